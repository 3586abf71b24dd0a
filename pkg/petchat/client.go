package petchat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "http://localhost:8000"

// Client is a stateless wrapper over the REST API. Every method maps to
// exactly one HTTP call: no retries, no caching, no batching. Transport
// failures and non-2xx statuses both surface as a single error; callers only
// learn that the operation failed.
type Client struct {
	http   *resty.Client
	userID string
	logger *slog.Logger
}

type Option func(*Client)

// WithUser scopes pet listing, creation and rate limiting to the given user.
func WithUser(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		http:   resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(30 * time.Second),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// check collapses transport errors and non-2xx responses into one uniform
// error per operation.
func (c *Client) check(op string, res *resty.Response, err error) error {
	if err != nil {
		c.logger.Debug("request failed", "op", op, "error", err)
		return fmt.Errorf("petchat: %s: %w", op, err)
	}
	if !res.IsSuccess() {
		c.logger.Debug("request rejected", "op", op, "status", res.StatusCode())
		return fmt.Errorf("petchat: %s: status %d", op, res.StatusCode())
	}
	return nil
}

func (c *Client) req(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if c.userID != "" {
		r.SetQueryParam("user_id", c.userID)
	}
	return r
}

// ListPets returns the caller's pet profiles.
func (c *Client) ListPets(ctx context.Context) ([]Pet, error) {
	var out []Pet
	res, err := c.req(ctx).SetResult(&out).Get("/pets")
	if err := c.check("list pets", res, err); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPet fetches one pet profile.
func (c *Client) GetPet(ctx context.Context, petID string) (Pet, error) {
	var out Pet
	res, err := c.req(ctx).SetResult(&out).Get("/pets/" + petID)
	if err := c.check("get pet", res, err); err != nil {
		return Pet{}, err
	}
	return out, nil
}

// CreatePet registers a new pet profile and returns the stored record.
func (c *Client) CreatePet(ctx context.Context, in NewPet) (Pet, error) {
	var out Pet
	res, err := c.req(ctx).SetBody(in).SetResult(&out).Post("/pets")
	if err := c.check("create pet", res, err); err != nil {
		return Pet{}, err
	}
	return out, nil
}

// DeletePet removes a pet and its chat history.
func (c *Client) DeletePet(ctx context.Context, petID string) error {
	res, err := c.req(ctx).Delete("/pets/" + petID)
	return c.check("delete pet", res, err)
}

// SendMessage delivers one user message and returns the pet's reply.
func (c *Client) SendMessage(ctx context.Context, petID, text string) (ChatMessage, error) {
	var out chatReply
	res, err := c.req(ctx).
		SetBody(chatRequest{PetID: petID, Message: text}).
		SetResult(&out).
		Post("/chat")
	if err := c.check("send message", res, err); err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{Role: RolePet, Content: out.Message, Timestamp: out.Timestamp}, nil
}

// History returns the stored conversation, oldest first.
func (c *Client) History(ctx context.Context, petID string) ([]ChatMessage, error) {
	var out chatHistory
	res, err := c.req(ctx).SetResult(&out).Get("/chat/" + petID + "/history")
	if err := c.check("get history", res, err); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// ClearHistory deletes the stored conversation.
func (c *Client) ClearHistory(ctx context.Context, petID string) error {
	res, err := c.req(ctx).Delete("/chat/" + petID + "/history")
	return c.check("clear history", res, err)
}
