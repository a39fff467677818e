// Package embedding defines the text-to-vector port and its
// implementations: a deterministic mock for tests, and an HTTP client that
// talks to the local embedding sidecar.
package embedding

import "context"

// Mode selects whether a batch is being embedded as a search query or as
// indexable content — some models bias the vector differently for each.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// Provider embeds batches of text into vectors.
type Provider interface {
	// Embed converts texts into their vector representations, one vector
	// per input text, in order.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)
	// Dimensions reports the fixed vector width this provider produces.
	Dimensions() int
	// Name identifies the provider for logging and registry lookup.
	Name() string
	// Close releases any resources (subprocesses, connections) held by
	// the provider.
	Close() error
}
