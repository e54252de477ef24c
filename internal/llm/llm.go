package llm

import (
	"context"
	"errors"
)

// ErrUpstreamUnavailable marks failures of the hosted inference service
// itself: non-success statuses, empty completions, transport errors. Callers
// use it to tell a bad upstream apart from a bad request.
var ErrUpstreamUnavailable = errors.New("inference upstream unavailable")

// Client produces a raw text completion for a rendered prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
