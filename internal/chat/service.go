package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petchat/internal/ai"
	"petchat/internal/pet"
)

const maxMessageLen = 2000

var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrMessageTooLong = errors.New("message too long")
)

type Options struct {
	Provider string // registry key, e.g. "gemini"
	Model    string
	// Window is how many recent messages are injected into the prompt.
	Window int
	// Keep caps stored history per pet; older rows are trimmed.
	Keep int
	// HistoryLimit is the page size for history reads when the caller
	// does not ask for one.
	HistoryLimit int
}

type Service struct {
	repo     *Repo
	pets     *pet.Repo
	registry *ai.Registry
	opts     Options
}

func NewService(repo *Repo, pets *pet.Repo, registry *ai.Registry, opts Options) *Service {
	if opts.Window <= 0 || opts.Window > 100 {
		opts.Window = 5
	}
	if opts.Keep <= 0 {
		opts.Keep = 100
	}
	if opts.Provider == "" {
		opts.Provider = "gemini"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Service{repo: repo, pets: pets, registry: registry, opts: opts}
}

// Reply is what POST /chat returns.
type Reply struct {
	PetID     string    `json:"pet_id"`
	PetName   string    `json:"pet_name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateContent checks a chat message before any work happens. The sync
// and async entry points share it so both reject the same inputs.
func ValidateContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	if len(content) > maxMessageLen {
		return ErrMessageTooLong
	}
	return nil
}

// buildPrompt flattens the persona and the recent transcript into a single
// generation prompt, the same shape the pet was designed against.
func buildPrompt(p *pet.Pet, history []Message, userText string) string {
	var b strings.Builder
	b.WriteString(p.SystemPrompt)
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, m := range history {
			speaker := "Human"
			if m.Role == RolePet {
				speaker = "You"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
		}
	}

	fmt.Fprintf(&b, "\nHuman says: %s\n\nRespond as %s would. Stay in character!", userText, p.Name)
	return b.String()
}

// SendMessage generates and persists one exchange. The user and pet rows are
// written only after a successful generation, so a provider failure leaves
// stored history untouched.
func (s *Service) SendMessage(ctx context.Context, userID, petID, content string) (*Reply, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(ctx, s.opts.Provider, s.opts.Model)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecent(ctx, petID, s.opts.Window)
	if err != nil {
		return nil, err
	}

	replyText, err := provider.Generate(ctx, buildPrompt(p, history, content))
	if err != nil {
		return nil, err
	}
	replyText = strings.TrimSpace(replyText)

	now := time.Now().UTC()
	userMsg := &Message{PetID: petID, UserID: userID, Role: RoleUser, Content: content, CreatedAt: now}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}
	petMsg := &Message{PetID: petID, UserID: userID, Role: RolePet, Content: replyText, CreatedAt: now}
	if err := s.repo.InsertMessage(ctx, petMsg); err != nil {
		return nil, err
	}

	// Keep stored history bounded (free-tier storage).
	if err := s.repo.TrimToNewest(ctx, petID, s.opts.Keep); err != nil {
		return nil, err
	}

	return &Reply{
		PetID:     petID,
		PetName:   p.Name,
		Message:   replyText,
		Timestamp: now,
	}, nil
}

// History is what GET /chat/:pet_id/history returns.
type History struct {
	PetID    string    `json:"pet_id"`
	PetName  string    `json:"pet_name"`
	Messages []Message `json:"messages"`
}

func (s *Service) History(ctx context.Context, petID string, limit int) (*History, error) {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	if limit > 200 {
		limit = 200
	}
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListRecent(ctx, petID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return &History{PetID: petID, PetName: p.Name, Messages: msgs}, nil
}

// Clear wipes the pet's history. The pet must exist; a missing pet is
// reported, not treated as an empty clear.
func (s *Service) Clear(ctx context.Context, petID string) error {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return err
	}
	return s.repo.DeleteByPet(ctx, petID)
}

// ClearForDeletedPet removes history without the existence check, for the
// pet-deletion cascade where the pet row is already gone.
func (s *Service) ClearForDeletedPet(ctx context.Context, petID string) error {
	return s.repo.DeleteByPet(ctx, petID)
}

func (s *Service) CreateJob(ctx context.Context, job *Job) error {
	return s.repo.CreateJob(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// RunJob executes one queued reply job end to end.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	if _, err := s.SendMessage(ctx, j.UserID, j.PetID, j.Prompt); err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	// The reply row is the newest message for the pet.
	recent, err := s.repo.ListRecentDesc(ctx, j.PetID, 1)
	if err != nil || len(recent) == 0 {
		return s.repo.MarkJobSucceeded(ctx, jobID, 0)
	}
	return s.repo.MarkJobSucceeded(ctx, jobID, recent[0].ID)
}
