package middleware

import (
	"context"
	"errors"
	"regexp"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

// Mask replaces every redacted fact value.
const Mask = "***"

// ErrReadOnly is returned by writes through a redacting view.
var ErrReadOnly = errors.New("redacted view is read-only")

// DefaultRedactKeys matches the personal facts collected by the built-in kinds.
var DefaultRedactKeys = []string{`name$`, `address$`}

type redactingView struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactingView creates a read-only middleware that masks facts whose keys match
// any pattern. Writes are refused so a masked copy can never replace the real session.
func NewRedactingView(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactingView{next: next, patterns: patterns}
	}, nil
}

func (m *redactingView) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	return ErrReadOnly
}

func (m *redactingView) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Redact(sess, m.patterns), nil
}

func (m *redactingView) Delete(ctx context.Context, sessionID string) error {
	return ErrReadOnly
}

func (m *redactingView) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Redact returns a copy of sess with matching facts masked. sess is not modified.
func Redact(sess *domain.Session, patterns []*regexp.Regexp) *domain.Session {
	out := sess.Clone()
	for k := range out.Facts {
		for _, p := range patterns {
			if p.MatchString(k) {
				out.Facts[k] = Mask
				break
			}
		}
	}
	return out
}
