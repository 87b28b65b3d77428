package ports

import (
	"context"
	"time"

	"github.com/aretw0/docket/pkg/domain"
)

// RenderRequest is the input of a renderer. Renderers must not mutate Facts.
type RenderRequest struct {
	Text  string
	Title string
	Facts domain.Facts
	Date  time.Time
}

// Renderer turns generated text into document bytes.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
	// Format describes the produced file (e.g. "PDF", ".pdf", "application/pdf").
	Format() Format
}

// Format describes a rendered file type.
type Format struct {
	Name      string
	Extension string
	MIMEType  string
}
