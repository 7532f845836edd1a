package interfaces

import "context"

// TextOracle is an external text-generation service used for natural-language
// question answering over dataset statistics. It is glue at the boundary: the
// generation loop never depends on it.
type TextOracle interface {
	// Generate sends a prompt (with optional context prepended) and returns
	// the oracle's completion.
	Generate(ctx context.Context, prompt, contextBlock string) (string, error)

	// Healthy reports whether the oracle endpoint is reachable.
	Healthy(ctx context.Context) bool
}
