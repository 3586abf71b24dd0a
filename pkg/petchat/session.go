package petchat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNotInitialized       = errors.New("petchat: session not initialized")
	ErrEmptyMessage         = errors.New("petchat: message must not be empty")
	ErrSendInFlight         = errors.New("petchat: a send is already in flight")
	ErrConfirmationRequired = errors.New("petchat: confirmation required")
)

// Session is the authenticated identity a conversation belongs to. It is
// passed in explicitly rather than read from ambient state so controllers
// are deterministic under test.
type Session struct {
	UserID string
}

// PetDirectory is the pet profile lookup the controller initializes from.
type PetDirectory interface {
	GetPet(ctx context.Context, petID string) (Pet, error)
}

// ChatTransport sends messages and manages server-held history for one pet.
type ChatTransport interface {
	SendMessage(ctx context.Context, petID, text string) (ChatMessage, error)
	History(ctx context.Context, petID string) ([]ChatMessage, error)
	ClearHistory(ctx context.Context, petID string) error
}

// Controller owns the visible message sequence of one open conversation.
// It appends optimistically on submit, merges the confirmed reply on
// success, and marks the optimistic entry failed on error — typed input is
// never silently dropped. All operations are serialized per controller.
//
// A failed send is not retried; the caller decides whether to resubmit.
type Controller struct {
	pets      PetDirectory
	transport ChatTransport
	session   Session
	timeout   time.Duration
	now       func() time.Time

	mu    sync.Mutex
	ready bool
	petID string
	st    sessionState
}

type ControllerOption func(*Controller)

// WithRequestTimeout bounds each remote call the controller makes. Without
// a bound, a hung send would leave the controller in Sending forever.
func WithRequestTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

func withClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// NewController builds a controller for the given identity. The identity is
// required: conversations are always scoped to a user.
func NewController(session Session, pets PetDirectory, transport ChatTransport, opts ...ControllerOption) (*Controller, error) {
	if strings.TrimSpace(session.UserID) == "" {
		return nil, errors.New("petchat: session user id required")
	}
	if pets == nil || transport == nil {
		return nil, errors.New("petchat: pet directory and chat transport required")
	}
	c := &Controller{
		pets:      pets,
		transport: transport,
		session:   session,
		timeout:   30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Initialize loads the pet profile and full history concurrently. Both must
// succeed; any failure aborts as a unit and the controller stays unusable
// rather than rendering a partial conversation.
func (c *Controller) Initialize(ctx context.Context, petID string) error {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var (
		p       Pet
		history []ChatMessage
	)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		var err error
		p, err = c.pets.GetPet(gctx, petID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = c.transport.History(gctx, petID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.petID = petID
	c.st = apply(sessionState{}, evInitialized{pet: p, history: history})
	c.ready = true
	return nil
}

// Submit appends text optimistically and sends it. On success the confirmed
// reply is appended and the reply is returned. On failure the optimistic
// entry stays visible, marked failed, and the controller returns to Idle.
//
// Empty (or whitespace-only) text is rejected before any network call, and
// a second Submit while one is in flight is rejected without touching the
// message sequence.
func (c *Controller) Submit(ctx context.Context, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if !c.ready {
		c.mu.Unlock()
		return ChatMessage{}, ErrNotInitialized
	}
	if c.st.phase == PhaseSending {
		c.mu.Unlock()
		return ChatMessage{}, ErrSendInFlight
	}
	petID := c.petID
	c.st = apply(c.st, evSubmitted{msg: ChatMessage{
		Role:      RoleUser,
		Content:   text,
		Timestamp: c.now(),
	}})
	c.mu.Unlock()

	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	reply, err := c.transport.SendMessage(cctx, petID, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.st = apply(c.st, evSendFailed{})
		return ChatMessage{}, err
	}
	c.st = apply(c.st, evReplyReceived{reply: reply})
	return reply, nil
}

// Clear wipes the conversation on the server, then locally. The caller must
// pass confirm=true — asking the user is the caller's policy, the deletion
// itself is ours. On failure local state is left byte-for-byte untouched.
func (c *Controller) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	c.mu.Lock()
	if !c.ready {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.st.phase == PhaseSending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	petID := c.petID
	c.mu.Unlock()

	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	if err := c.transport.ClearHistory(cctx, petID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.st = apply(c.st, evCleared{})
	return nil
}

// Messages returns a copy of the visible sequence in append order.
func (c *Controller) Messages() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneEntries(c.st.entries)
}

// Pet returns the profile loaded at Initialize.
func (c *Controller) Pet() Pet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.pet
}

// Phase reports whether a send is in flight.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.phase
}

// User returns the identity this conversation is scoped to.
func (c *Controller) User() string {
	return c.session.UserID
}
