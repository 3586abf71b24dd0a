package ai

import "context"

// Provider generates one reply for a prompt built from the pet persona and
// recent conversation. Single-shot only; no streaming surface exists.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
