package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"petchat/internal/ai"
	"petchat/internal/pet"
)

type recordingProvider struct {
	lastPrompt string
	reply      string
	err        error
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	p.lastPrompt = prompt
	if p.err != nil {
		return "", p.err
	}
	if p.reply == "" {
		return "Woof!", nil
	}
	return p.reply, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&pet.Pet{}, &Message{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, prov *recordingProvider, opts Options) (*Service, *pet.Repo) {
	t.Helper()
	reg := ai.NewRegistry()
	reg.Register("fake", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		_ = model
		return prov, nil
	})
	opts.Provider = "fake"
	petRepo := pet.NewRepo(db)
	return NewService(NewRepo(db), petRepo, reg, opts), petRepo
}

func seedPet(t *testing.T, petRepo *pet.Repo, id string) *pet.Pet {
	t.Helper()
	p := &pet.Pet{
		ID:                id,
		UserID:            "u1",
		Name:              "Buster",
		PetType:           "dog",
		Breed:             "Golden Retriever",
		PersonalityTraits: []string{"playful"},
		FavoriteThings:    []string{"cheese"},
	}
	p.SystemPrompt = pet.GenerateSystemPrompt(*p)
	if err := petRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return p
}

func TestSendMessage_WritesUserAndPet(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{reply: "ME! I AM THE GOOD BOY!"}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100})
	seedPet(t, petRepo, "p1")

	reply, err := svc.SendMessage(context.Background(), "u1", "p1", "Who's a good boy?")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if reply.Message != "ME! I AM THE GOOD BOY!" {
		t.Fatalf("unexpected reply: %q", reply.Message)
	}
	if reply.PetName != "Buster" {
		t.Fatalf("unexpected pet name: %q", reply.PetName)
	}

	var msgs []Message
	if err := db.Where("pet_id = ?", "p1").Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Who's a good boy?" {
		t.Fatalf("unexpected user msg: role=%q content=%q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RolePet || msgs[1].Content != "ME! I AM THE GOOD BOY!" {
		t.Fatalf("unexpected pet msg: role=%q content=%q", msgs[1].Role, msgs[1].Content)
	}
}

func TestSendMessage_PromptCarriesPersonaAndWindow(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{}
	window := 3
	svc, petRepo := newTestService(t, db, prov, Options{Window: window, Keep: 100})
	seedPet(t, petRepo, "p1")

	// seed 5 messages already in history
	repo := NewRepo(db)
	for i := 0; i < 5; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RolePet
		}
		if err := repo.InsertMessage(context.Background(), &Message{
			PetID: "p1", UserID: "u1", Role: role, Content: "seed",
		}); err != nil {
			t.Fatalf("seed msg %d: %v", i, err)
		}
	}

	if _, err := svc.SendMessage(context.Background(), "u1", "p1", "new"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if !strings.Contains(prov.lastPrompt, "You are Buster") {
		t.Fatalf("prompt missing persona:\n%s", prov.lastPrompt)
	}
	if got := strings.Count(prov.lastPrompt, "seed"); got != window {
		t.Fatalf("expected %d history lines in prompt, got %d", window, got)
	}
	if !strings.Contains(prov.lastPrompt, "Human says: new") {
		t.Fatalf("prompt missing new message:\n%s", prov.lastPrompt)
	}
}

func TestSendMessage_ProviderFailureLeavesHistoryUntouched(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{err: errors.New("quota exceeded")}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100})
	seedPet(t, petRepo, "p1")

	if _, err := svc.SendMessage(context.Background(), "u1", "p1", "hello"); err == nil {
		t.Fatalf("expected provider error")
	}

	var count int64
	if err := db.Model(&Message{}).Where("pet_id = ?", "p1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no stored messages after failure, got %d", count)
	}
}

func TestSendMessage_RejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100})
	seedPet(t, petRepo, "p1")

	if _, err := svc.SendMessage(context.Background(), "u1", "p1", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "u1", "p1", strings.Repeat("x", maxMessageLen+1)); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "u1", "missing", "hello"); !errors.Is(err, pet.ErrNotFound) {
		t.Fatalf("expected pet.ErrNotFound, got %v", err)
	}
	if prov.lastPrompt != "" {
		t.Fatalf("provider should not have been called")
	}
}

func TestSendMessage_TrimsHistory(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 4})
	seedPet(t, petRepo, "p1")

	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(context.Background(), "u1", "p1", "msg"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	var msgs []Message
	if err := db.Where("pet_id = ?", "p1").Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected history trimmed to 4, got %d", len(msgs))
	}
}

func TestHistoryAndClear(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{reply: "Woof!"}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100})
	seedPet(t, petRepo, "p1")

	if _, err := svc.SendMessage(context.Background(), "u1", "p1", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	hist, err := svc.History(context.Background(), "p1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist.PetName != "Buster" || len(hist.Messages) != 2 {
		t.Fatalf("unexpected history: name=%q len=%d", hist.PetName, len(hist.Messages))
	}
	if hist.Messages[0].Role != RoleUser || hist.Messages[1].Role != RolePet {
		t.Fatalf("unexpected order: %q then %q", hist.Messages[0].Role, hist.Messages[1].Role)
	}

	if err := svc.Clear(context.Background(), "p1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	hist, err = svc.History(context.Background(), "p1", 0)
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	if len(hist.Messages) != 0 {
		t.Fatalf("expected empty history, got %d", len(hist.Messages))
	}

	if err := svc.Clear(context.Background(), "missing"); !errors.Is(err, pet.ErrNotFound) {
		t.Fatalf("expected pet.ErrNotFound, got %v", err)
	}
}

func TestHistory_ConfiguredDefaultLimit(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{reply: "Woof!"}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100, HistoryLimit: 1})
	seedPet(t, petRepo, "p1")

	if _, err := svc.SendMessage(context.Background(), "u1", "p1", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	// no explicit limit: the configured default applies
	hist, err := svc.History(context.Background(), "p1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Messages) != 1 || hist.Messages[0].Role != RolePet {
		t.Fatalf("expected only the newest message, got %+v", hist.Messages)
	}

	// an explicit limit still wins
	hist, err = svc.History(context.Background(), "p1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("expected both messages, got %d", len(hist.Messages))
	}
}

func TestRunJob(t *testing.T) {
	db := openTestDB(t)
	prov := &recordingProvider{reply: "Meow."}
	svc, petRepo := newTestService(t, db, prov, Options{Window: 5, Keep: 100})
	seedPet(t, petRepo, "p1")

	job := &Job{ID: "01JOBAAAAAAAAAAAAAAAAAAAAA", UserID: "u1", PetID: "p1", Prompt: "hello", Status: JobQueued}
	if err := svc.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}

	got, err := svc.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("expected succeeded, got %s (err=%v)", got.Status, got.Error)
	}
	if got.ResultMessageID == nil || *got.ResultMessageID == 0 {
		t.Fatalf("expected result message id to be set")
	}

	// failed generation marks the job failed
	prov.err = errors.New("boom")
	job2 := &Job{ID: "01JOBBBBBBBBBBBBBBBBBBBBBB", UserID: "u1", PetID: "p1", Prompt: "hello", Status: JobQueued}
	if err := svc.CreateJob(context.Background(), job2); err != nil {
		t.Fatalf("create job2: %v", err)
	}
	if err := svc.RunJob(context.Background(), job2.ID); err == nil {
		t.Fatalf("expected job failure")
	}
	got2, err := svc.GetJob(context.Background(), job2.ID)
	if err != nil {
		t.Fatalf("get job2: %v", err)
	}
	if got2.Status != JobFailed || got2.Error == nil {
		t.Fatalf("expected failed with error, got %s", got2.Status)
	}
}
