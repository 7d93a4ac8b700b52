// Package coach turns a one-minute driver status summary into short
// natural-language advice using a remote text-generation provider.
package coach

import "context"

// Fallback is returned to the caller when the provider fails.
const Fallback = "unable to provide coaching advice"

// Advisor produces advice text for a status summary. An empty string means
// no advice is needed.
type Advisor interface {
	Advise(ctx context.Context, summary string) (string, error)
}

// AdvisorFunc adapts a function to the Advisor interface.
type AdvisorFunc func(ctx context.Context, summary string) (string, error)

// Advise calls the wrapped function.
func (f AdvisorFunc) Advise(ctx context.Context, summary string) (string, error) {
	return f(ctx, summary)
}
