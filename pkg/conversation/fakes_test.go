package conversation_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool
	calls []ports.GenerationRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) Calls() []ports.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ports.GenerationRequest(nil), g.calls...)
}

type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	calls []ports.RenderRequest
}

func (r *fakeRenderer) Render(ctx context.Context, req ports.RenderRequest) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req)
	r.mu.Unlock()
	// A misbehaving renderer must not reach the session facts.
	req.Facts["tampered"] = "yes"
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake " + req.Title), nil
}

func (r *fakeRenderer) Format() ports.Format {
	return ports.Format{Name: "PDF", Extension: ".pdf", MIMEType: "application/pdf"}
}

type recordingSender struct {
	mu          sync.Mutex
	texts       []string
	artifacts   []domain.Artifact
	artifactErr error
}

func (s *recordingSender) SendText(ctx context.Context, sessionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) SendArtifact(ctx context.Context, sessionID string, a domain.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifactErr != nil {
		return s.artifactErr
	}
	s.artifacts = append(s.artifacts, a)
	return nil
}

func (s *recordingSender) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

var errBackend = errors.New("backend unreachable")
