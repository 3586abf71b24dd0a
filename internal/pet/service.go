package pet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLen   = 50
	maxBreedLen  = 50
	maxQuirksLen = 500
	maxAge       = 100
	maxTraits    = 5
	maxFavorites = 10
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

type CreateInput struct {
	Name              string
	PetType           string
	Breed             string
	Age               *int
	PersonalityTraits []string
	FavoriteThings    []string
	Quirks            string
}

type Service struct {
	repo *Repo
	now  func() time.Time
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (in CreateInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return &ValidationError{Field: "name", Msg: "must be 1-50 characters"}
	}
	if !validType(in.PetType) {
		return &ValidationError{Field: "pet_type", Msg: "unsupported pet type"}
	}
	if len(in.Breed) > maxBreedLen {
		return &ValidationError{Field: "breed", Msg: "too long"}
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > maxAge) {
		return &ValidationError{Field: "age", Msg: "must be between 0 and 100"}
	}
	if len(in.PersonalityTraits) > maxTraits {
		return &ValidationError{Field: "personality_traits", Msg: "at most 5 traits"}
	}
	for _, t := range in.PersonalityTraits {
		if !validTrait(t) {
			return &ValidationError{Field: "personality_traits", Msg: "unknown trait: " + t}
		}
	}
	if len(in.FavoriteThings) > maxFavorites {
		return &ValidationError{Field: "favorite_things", Msg: "at most 10 favorite things"}
	}
	if len(in.Quirks) > maxQuirksLen {
		return &ValidationError{Field: "quirks", Msg: "too long"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Pet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user_id", Msg: "required"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Pet{
		// Short ids keep URLs friendly; collision odds are fine at this scale.
		ID:                uuid.NewString()[:8],
		UserID:            userID,
		Name:              strings.TrimSpace(in.Name),
		PetType:           in.PetType,
		Breed:             strings.TrimSpace(in.Breed),
		Age:               in.Age,
		PersonalityTraits: in.PersonalityTraits,
		FavoriteThings:    in.FavoriteThings,
		Quirks:            strings.TrimSpace(in.Quirks),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.PersonalityTraits == nil {
		p.PersonalityTraits = []string{}
	}
	if p.FavoriteThings == nil {
		p.FavoriteThings = []string{}
	}
	p.SystemPrompt = GenerateSystemPrompt(*p)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Pet, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the pet row. Chat history cleanup is the caller's job since
// history lives in the chat package.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
