package repository

import "context"

// ICompletion sends a system and user prompt to a chat model and returns the
// first reply.
type ICompletion interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
