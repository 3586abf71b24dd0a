package petchat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	mu      sync.Mutex
	pet     Pet
	petErr  error
	history []ChatMessage
	histErr error

	sendErr   error
	sendCalls int
	sentTexts []string
	clearErr  error
	clearOK   bool

	sendStarted chan struct{}
	sendRelease chan struct{}
}

func (f *fakeBackend) GetPet(ctx context.Context, petID string) (Pet, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.petErr != nil {
		return Pet{}, f.petErr
	}
	return f.pet, nil
}

func (f *fakeBackend) History(ctx context.Context, petID string) ([]ChatMessage, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.histErr != nil {
		return nil, f.histErr
	}
	return f.history, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, petID, text string) (ChatMessage, error) {
	_ = ctx
	f.mu.Lock()
	f.sendCalls++
	f.sentTexts = append(f.sentTexts, text)
	started := f.sendStarted
	release := f.sendRelease
	err := f.sendErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{Role: RolePet, Content: "Woof: " + text, Timestamp: time.Unix(200, 0)}, nil
}

func (f *fakeBackend) ClearHistory(ctx context.Context, petID string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clearOK = true
	return nil
}

func (f *fakeBackend) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

func newReadyController(t *testing.T, f *fakeBackend) *Controller {
	t.Helper()
	c, err := NewController(Session{UserID: "u1"}, f, f,
		withClock(func() time.Time { return time.Unix(100, 0) }))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := c.Initialize(context.Background(), f.pet.ID); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c
}

func TestNewController_RequiresIdentity(t *testing.T) {
	f := &fakeBackend{}
	if _, err := NewController(Session{}, f, f); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := NewController(Session{UserID: "u1"}, nil, f); err == nil {
		t.Fatalf("expected error for nil pet directory")
	}
}

func TestInitialize_LoadsPetAndHistory(t *testing.T) {
	f := &fakeBackend{
		pet: Pet{ID: "p1", Name: "Buster", PetType: "dog"},
		history: []ChatMessage{
			{Role: RolePet, Content: "Woof!", Timestamp: time.Unix(10, 0)},
			{Role: RoleUser, Content: "hi", Timestamp: time.Unix(20, 0)},
		},
	}
	c := newReadyController(t, f)

	if got := c.Pet(); got.Name != "Buster" {
		t.Fatalf("unexpected pet: %+v", got)
	}
	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(msgs))
	}
	if msgs[0].Role != RolePet || msgs[0].Content != "Woof!" {
		t.Fatalf("unexpected first entry: %+v", msgs[0])
	}
	if msgs[0].Pending || msgs[0].Failed {
		t.Fatalf("server history must load clean: %+v", msgs[0])
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("expected idle after initialize")
	}
}

func TestInitialize_FailsAsAUnit(t *testing.T) {
	f := &fakeBackend{
		pet:     Pet{ID: "p1", Name: "Buster"},
		history: []ChatMessage{{Role: RolePet, Content: "Woof!"}},
		histErr: errors.New("history unavailable"),
	}
	c, err := NewController(Session{UserID: "u1"}, f, f)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := c.Initialize(context.Background(), "p1"); err == nil {
		t.Fatalf("expected initialize failure")
	}
	if _, err := c.Submit(context.Background(), "hello"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("partial state leaked: %v", c.Messages())
	}
}

func TestSubmit_Success(t *testing.T) {
	f := &fakeBackend{pet: Pet{ID: "p1", Name: "Buster"}}
	c := newReadyController(t, f)

	reply, err := c.Submit(context.Background(), "  hello  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if reply.Content != "Woof: hello" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user + reply, got %d entries", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected user entry: %+v", msgs[0])
	}
	if msgs[0].Pending || msgs[0].Failed {
		t.Fatalf("user entry should be confirmed: %+v", msgs[0])
	}
	if msgs[1].Role != RolePet || msgs[1].Content != "Woof: hello" {
		t.Fatalf("unexpected reply entry: %+v", msgs[1])
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("expected idle after success")
	}
	if f.sentTexts[0] != "hello" {
		t.Fatalf("expected trimmed text on the wire, got %q", f.sentTexts[0])
	}
}

func TestSubmit_EmptyRejectedBeforeNetwork(t *testing.T) {
	f := &fakeBackend{pet: Pet{ID: "p1"}}
	c := newReadyController(t, f)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.Submit(context.Background(), text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", text, err)
		}
	}
	if f.sends() != 0 {
		t.Fatalf("no network call expected, got %d", f.sends())
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("sequence must be untouched, got %v", c.Messages())
	}
}

func TestSubmit_FailureKeepsEntryMarkedFailed(t *testing.T) {
	f := &fakeBackend{pet: Pet{ID: "p1"}, sendErr: errors.New("server down")}
	c := newReadyController(t, f)

	if _, err := c.Submit(context.Background(), "hello"); err == nil {
		t.Fatalf("expected send failure")
	}

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(msgs))
	}
	if msgs[0].Content != "hello" || !msgs[0].Failed || msgs[0].Pending {
		t.Fatalf("expected failed non-pending entry, got %+v", msgs[0])
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("controller must return to idle after failure")
	}

	// recovery: the next submit works and appends after the failed entry
	f.mu.Lock()
	f.sendErr = nil
	f.mu.Unlock()
	if _, err := c.Submit(context.Background(), "again"); err != nil {
		t.Fatalf("submit after failure: %v", err)
	}
	msgs = c.Messages()
	if len(msgs) != 3 || !msgs[0].Failed || msgs[1].Content != "again" {
		t.Fatalf("unexpected sequence after recovery: %+v", msgs)
	}
}

func TestSubmit_RejectsWhileSendInFlight(t *testing.T) {
	f := &fakeBackend{
		pet:         Pet{ID: "p1"},
		sendStarted: make(chan struct{}),
		sendRelease: make(chan struct{}),
	}
	c := newReadyController(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "first")
		done <- err
	}()
	<-f.sendStarted

	if c.Phase() != PhaseSending {
		t.Fatalf("expected sending phase")
	}
	if _, err := c.Submit(context.Background(), "second"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}
	if err := c.Clear(context.Background(), true); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected clear rejected while sending, got %v", err)
	}

	close(f.sendRelease)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("rejected submit must not add entries, got %d", len(msgs))
	}
	if f.sends() != 1 {
		t.Fatalf("expected a single network call, got %d", f.sends())
	}
}

func TestClear(t *testing.T) {
	f := &fakeBackend{
		pet:     Pet{ID: "p1"},
		history: []ChatMessage{{Role: RolePet, Content: "Woof!"}},
	}
	c := newReadyController(t, f)

	if err := c.Clear(context.Background(), false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if len(c.Messages()) != 1 {
		t.Fatalf("unconfirmed clear must not touch state")
	}

	if err := c.Clear(context.Background(), true); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !f.clearOK {
		t.Fatalf("server clear was not called")
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("expected empty sequence after clear")
	}
}

func TestClear_RemoteFailureLeavesStateUntouched(t *testing.T) {
	f := &fakeBackend{
		pet:      Pet{ID: "p1"},
		history:  []ChatMessage{{Role: RolePet, Content: "Woof!"}, {Role: RoleUser, Content: "hi"}},
		clearErr: errors.New("server down"),
	}
	c := newReadyController(t, f)

	if err := c.Clear(context.Background(), true); err == nil {
		t.Fatalf("expected clear failure")
	}
	msgs := c.Messages()
	if len(msgs) != 2 || msgs[0].Content != "Woof!" || msgs[1].Content != "hi" {
		t.Fatalf("state changed on failed clear: %+v", msgs)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	f := &fakeBackend{
		pet:     Pet{ID: "p1"},
		history: []ChatMessage{{Role: RolePet, Content: "Woof!"}},
	}
	c := newReadyController(t, f)

	msgs := c.Messages()
	msgs[0].Content = "mutated"
	if c.Messages()[0].Content != "Woof!" {
		t.Fatalf("Messages must return a copy")
	}
}
