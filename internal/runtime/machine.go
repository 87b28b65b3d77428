package runtime

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/extract"
)

// Action is what the caller must do after a step.
type Action string

const (
	// ActionReply sends Decision.Text and ends the turn.
	ActionReply Action = "reply"
	// ActionAsk sends a single question and suspends until the next turn.
	ActionAsk Action = "ask"
	// ActionGenerate hands the session facts and the raw text to the generator.
	ActionGenerate Action = "generate"
)

// Decision is the outcome of one step of the machine.
type Decision struct {
	Action Action
	Text   string
	// Field is the fact being asked for. Empty for unbound questions.
	Field string
}

// Machine is the collection state machine. It mutates the session it is given and
// performs no I/O other than the strategy's optional info check.
type Machine struct {
	catalog   *catalog.Catalog
	extractor *extract.Extractor
	strategy  Strategy
	logger    *slog.Logger
}

// Option configures the Machine.
type Option func(*Machine)

// WithStrategy replaces the default checklist strategy.
func WithStrategy(s Strategy) Option {
	return func(m *Machine) {
		m.strategy = s
	}
}

// WithLogger configures a logger for transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a machine over a catalog and an extractor.
func NewMachine(c *catalog.Catalog, ex *extract.Extractor, opts ...Option) *Machine {
	m := &Machine{
		catalog:   c,
		extractor: ex,
		strategy:  Checklist{Catalog: c},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the catalog the machine reads from.
func (m *Machine) Catalog() *catalog.Catalog {
	return m.catalog
}

// Strategy returns the active strategy.
func (m *Machine) Strategy() Strategy {
	return m.strategy
}

// Step advances the session by one user turn.
func (m *Machine) Step(ctx context.Context, sess *domain.Session, text string) (Decision, error) {
	switch sess.State {
	case domain.StateSelectingKind:
		return m.SelectKind(sess, text), nil
	case domain.StateChatting, domain.StateCollecting:
		m.Absorb(sess, text)
		return m.Decide(ctx, sess, text)
	default:
		return m.Choose(sess, text), nil
	}
}

// Menu resets the session and returns the welcome menu.
func (m *Machine) Menu(sess *domain.Session) Decision {
	sess.Reset()
	return Decision{Action: ActionReply, Text: WelcomeText}
}

// Choose handles a main menu option: chat, generate or help.
func (m *Machine) Choose(sess *domain.Session, text string) Decision {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "chat", "chat with ai":
		sess.Begin(domain.KindGeneral)
		m.logger.Debug("chat mode", "session_id", sess.ID)
		return Decision{Action: ActionReply, Text: ChatModeText}
	case "2", "generate", "document", "generate document":
		sess.State = domain.StateSelectingKind
		return Decision{Action: ActionReply, Text: KindListText(m.catalog)}
	case "3", "help":
		return Decision{Action: ActionReply, Text: HelpText}
	}
	sess.State = domain.StateMenu
	return Decision{Action: ActionReply, Text: unknownOptionText + WelcomeText}
}

// SelectKind activates the chosen kind, or returns to the menu on "back".
func (m *Machine) SelectKind(sess *domain.Session, text string) Decision {
	choice := strings.TrimSpace(text)
	if strings.EqualFold(choice, "back") || strings.EqualFold(choice, "back_menu") {
		return m.Menu(sess)
	}

	kind, ok := m.catalog.Resolve(choice)
	if !ok {
		return Decision{Action: ActionReply, Text: unknownKindText + KindListText(m.catalog)}
	}

	sess.Begin(kind)
	m.logger.Debug("kind selected", "session_id", sess.ID, "kind", kind)
	return Decision{Action: ActionReply, Text: KindIntroText(m.catalog, kind)}
}

// Absorb records the text into the session facts.
// An answer to the pending field is stored verbatim under that exact key; extraction
// from the same text only fills keys that are still absent. It returns the keys added.
func (m *Machine) Absorb(sess *domain.Session, text string) []string {
	if sess.Facts == nil {
		sess.Facts = make(domain.Facts)
	}
	sess.Turns++

	var added []string
	answer := strings.TrimSpace(text)
	pending := sess.PendingField
	if pending != "" && answer != "" {
		if !sess.Facts.Has(pending) {
			added = append(added, pending)
		}
		sess.Facts.Set(pending, answer)
	}

	found := m.extractor.Extract(extract.Request{
		Text:      text,
		Kind:      sess.Kind,
		Known:     sess.Facts,
		Solicited: pending,
	})
	added = append(added, sess.Facts.Merge(found)...)

	if len(added) > 0 {
		m.logger.Debug("facts absorbed", "session_id", sess.ID, "kind", sess.Kind, "keys", added)
	}
	return added
}

// Decide runs the strategy on an active session.
func (m *Machine) Decide(ctx context.Context, sess *domain.Session, text string) (Decision, error) {
	if !sess.State.Conversational() {
		return Decision{}, fmt.Errorf("cannot decide in state %q", sess.State)
	}
	if !m.catalog.Has(sess.Kind) {
		return Decision{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, sess.Kind)
	}
	d, err := m.strategy.Decide(ctx, sess, text)
	if err != nil {
		return Decision{}, err
	}
	if d.Action == ActionAsk {
		m.logger.Debug("asking", "session_id", sess.ID, "kind", sess.Kind, "field", d.Field)
	}
	return d, nil
}
