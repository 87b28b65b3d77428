package ports

import (
	"context"

	"github.com/aretw0/docket/pkg/domain"
)

// GenerationRequest carries everything a generator needs for one document.
type GenerationRequest struct {
	Kind  domain.DocumentKind
	Label string
	// Instructions is the per-kind system prompt from the catalog.
	Instructions string
	// Text is the raw user text of the turn that triggered generation.
	Text  string
	Facts domain.Facts
}

// Generator turns a request into document prose. Errors are network, auth or payload failures.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// InfoChecker is the optional companion used by the delegated question strategy.
// It returns a follow-up question, or "" when there is enough information.
type InfoChecker interface {
	NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error)
}
