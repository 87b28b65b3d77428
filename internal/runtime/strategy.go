package runtime

import (
	"context"
	"strings"

	"log/slog"

	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

// Strategy decides, after facts have been absorbed, whether to ask or generate.
type Strategy interface {
	Name() string
	Decide(ctx context.Context, sess *domain.Session, text string) (Decision, error)
}

// Checklist asks for the first missing required field in catalog order.
type Checklist struct {
	Catalog *catalog.Catalog
}

func (Checklist) Name() string { return "checklist" }

// Decide never fails.
func (s Checklist) Decide(_ context.Context, sess *domain.Session, _ string) (Decision, error) {
	if sess.Kind.IsGeneral() {
		sess.PendingField = ""
		return Decision{Action: ActionGenerate}, nil
	}

	missing := sess.Facts.Missing(s.Catalog.RequiredFields(sess.Kind))
	if len(missing) > 0 {
		field := missing[0]
		sess.PendingField = field
		return Decision{
			Action: ActionAsk,
			Field:  field,
			Text:   s.Catalog.PromptForKind(sess.Kind, field),
		}, nil
	}

	sess.PendingField = ""
	return Decision{Action: ActionGenerate}, nil
}

// Delegated lets the generator judge whether more information is needed.
// Questions it returns are not tied to a field, so the next reply is mined, not stored verbatim.
type Delegated struct {
	Checker ports.InfoChecker
	Logger  *slog.Logger
}

func (Delegated) Name() string { return "delegated" }

// Decide proceeds to generation when the checker fails or has nothing to ask.
func (s Delegated) Decide(ctx context.Context, sess *domain.Session, text string) (Decision, error) {
	sess.PendingField = ""
	if sess.Kind.IsGeneral() || s.Checker == nil {
		return Decision{Action: ActionGenerate}, nil
	}

	question, err := s.Checker.NeedsMoreInfo(ctx, sess.Kind, text)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("info check failed, generating anyway",
				"session_id", sess.ID,
				"kind", sess.Kind,
				"err", err,
			)
		}
		return Decision{Action: ActionGenerate}, nil
	}
	if q := strings.TrimSpace(question); q != "" {
		return Decision{Action: ActionAsk, Text: QuestionText(q)}, nil
	}
	return Decision{Action: ActionGenerate}, nil
}
