package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/document"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/session"
)

const (
	// DefaultGenerateTimeout bounds one generator call.
	DefaultGenerateTimeout = 60 * time.Second
	// DefaultRenderTimeout bounds one render call.
	DefaultRenderTimeout = 30 * time.Second
)

// User facing texts of the generation branch.
const (
	ApologyText       = "I encountered an error. Please try again or use /start to restart."
	RenderFailureText = "Document generation failed, but your content is above."
	unknownCommand    = "Unknown command.\n\n"
)

// ErrEmptySessionID is returned for turns without a session id.
var ErrEmptySessionID = errors.New("session id is required")

// Turn is one inbound user message.
type Turn struct {
	SessionID string
	Text      string
}

// Orchestrator glues the state machine to the generator, the renderer and a channel.
type Orchestrator struct {
	sessions  *session.Manager
	machine   *runtime.Machine
	generator ports.Generator
	renderer  ports.Renderer

	generateTimeout time.Duration
	renderTimeout   time.Duration
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	now             func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithTimeouts bounds the generator and renderer calls. Non-positive values keep the defaults.
func WithTimeouts(generate, render time.Duration) Option {
	return func(o *Orchestrator) {
		if generate > 0 {
			o.generateTimeout = generate
		}
		if render > 0 {
			o.renderTimeout = render
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for file names and document dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator.
func New(sessions *session.Manager, machine *runtime.Machine, gen ports.Generator, r ports.Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions:        sessions,
		machine:         machine,
		generator:       gen,
		renderer:        r,
		generateTimeout: DefaultGenerateTimeout,
		renderTimeout:   DefaultRenderTimeout,
		logger:          logging.NewNop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sessions returns the session manager.
func (o *Orchestrator) Sessions() *session.Manager {
	return o.sessions
}

// Machine returns the state machine.
func (o *Orchestrator) Machine() *runtime.Machine {
	return o.machine
}

// HandleTurn processes one message. The returned error is reserved for session
// storage problems; generation, render and delivery failures are reported in Outcome.
func (o *Orchestrator) HandleTurn(ctx context.Context, turn Turn, out ports.Sender) (Outcome, error) {
	if strings.TrimSpace(turn.SessionID) == "" {
		return Outcome{}, ErrEmptySessionID
	}
	text := strings.TrimSpace(turn.Text)

	if cmd, ok := parseCommand(text); ok {
		return o.command(ctx, turn.SessionID, cmd, out)
	}

	var outcome Outcome
	committed, err := o.sessions.Transact(ctx, turn.SessionID, func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
		d, err := o.machine.Step(ctx, sess, text)
		if err != nil {
			return nil, err
		}

		switch d.Action {
		case runtime.ActionAsk:
			outcome = Outcome{Kind: OutcomeAsked, Field: d.Field, Text: d.Text}
			o.send(ctx, out, sess.ID, d.Text)
			if o.hooks.OnQuestion != nil {
				o.hooks.OnQuestion(ctx, &domain.QuestionEvent{
					EventBase: o.event(domain.EventQuestion, sess.ID),
					Kind:      sess.Kind,
					Field:     d.Field,
				})
			}
			return sess, nil

		case runtime.ActionGenerate:
			outcome = o.produce(ctx, sess, text, out)
			if outcome.Kind == OutcomeFailed {
				return nil, nil
			}
			return sess, nil
		}

		outcome = Outcome{Kind: OutcomeReply, Text: d.Text}
		o.send(ctx, out, sess.ID, d.Text)
		return sess, nil
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("turn for session %s: %w", turn.SessionID, err)
	}
	outcome.Session = committed
	return outcome, nil
}

func (o *Orchestrator) command(ctx context.Context, sessionID, cmd string, out ports.Sender) (Outcome, error) {
	switch cmd {
	case "start", "menu", "cancel":
		var reply string
		committed, err := o.sessions.Transact(ctx, sessionID, func(_ context.Context, sess *domain.Session) (*domain.Session, error) {
			reply = o.machine.Menu(sess).Text
			return sess, nil
		})
		if err != nil {
			return Outcome{}, fmt.Errorf("reset session %s: %w", sessionID, err)
		}

		kind := OutcomeReset
		if cmd == "cancel" {
			kind, reply = OutcomeCancelled, runtime.CancelText
		}
		if o.hooks.OnReset != nil {
			o.hooks.OnReset(ctx, &domain.ResetEvent{
				EventBase: o.event(domain.EventReset, sessionID),
				Reason:    cmd,
			})
		}
		o.logger.Info("session reset", "session_id", sessionID, "reason", cmd)
		o.send(ctx, out, sessionID, reply)
		return Outcome{Kind: kind, Session: committed, Text: reply}, nil

	case "help":
		o.send(ctx, out, sessionID, runtime.HelpText)
		sess, err := o.sessions.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeReply, Session: sess, Text: runtime.HelpText}, nil
	}

	reply := unknownCommand + runtime.HelpText
	o.send(ctx, out, sessionID, reply)
	return Outcome{Kind: OutcomeReply, Text: reply}, nil
}

// produce runs generate, render and deliver for a session whose facts are complete.
func (o *Orchestrator) produce(ctx context.Context, sess *domain.Session, text string, out ports.Sender) Outcome {
	cat := o.machine.Catalog()
	desc, err := cat.Lookup(sess.Kind)
	if err != nil {
		return o.fail(ctx, sess, out, err)
	}
	label := cat.Label(sess.Kind)

	genCtx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	start := o.now()
	generated, err := o.generator.Generate(genCtx, ports.GenerationRequest{
		Kind:         sess.Kind,
		Label:        label,
		Instructions: desc.Instructions,
		Text:         text,
		Facts:        sess.Facts.Clone(),
	})
	cancel()
	if err == nil && strings.TrimSpace(generated) == "" {
		err = errors.New("empty response")
	}
	o.step(ctx, domain.EventGenerate, sess, start, err)
	if err != nil {
		return o.fail(ctx, sess, out, err)
	}

	outcome := Outcome{Kind: OutcomeGenerated, Generated: generated}
	outcome.Text = fmt.Sprintf("*%s*\n\n%s", label, generated)
	o.send(ctx, out, sess.ID, outcome.Text)

	format := o.renderer.Format()
	renderCtx, cancel := context.WithTimeout(ctx, o.renderTimeout)
	start = o.now()
	data, err := o.renderer.Render(renderCtx, ports.RenderRequest{
		Text:  generated,
		Title: label,
		Facts: sess.Facts.Clone(),
		Date:  start,
	})
	cancel()
	o.step(ctx, domain.EventRender, sess, start, err)
	if err != nil {
		o.logger.Error("render failed", "session_id", sess.ID, "kind", sess.Kind, "err", err)
		outcome.Failure = domain.NewFailure(domain.FailureRender, err)
		outcome.Text = RenderFailureText
		o.send(ctx, out, sess.ID, RenderFailureText)
		return outcome
	}

	artifact := domain.Artifact{
		Filename: document.Filename(sess.Kind, start) + format.Extension,
		Title:    label,
		Caption:  caption(sess.Kind, format),
		MIMEType: format.MIMEType,
		Data:     data,
	}
	outcome.Artifact = &artifact

	start = o.now()
	err = out.SendArtifact(ctx, sess.ID, artifact)
	o.step(ctx, domain.EventDeliver, sess, start, err)
	if err != nil {
		o.logger.Error("artifact delivery failed", "session_id", sess.ID, "file", artifact.Filename, "err", err)
		outcome.Failure = domain.NewFailure(domain.FailureDelivery, err)
		return outcome
	}

	done := successText(format)
	outcome.Text = done
	o.send(ctx, out, sess.ID, done)
	return outcome
}

func (o *Orchestrator) fail(ctx context.Context, sess *domain.Session, out ports.Sender, err error) Outcome {
	o.logger.Error("generation failed", "session_id", sess.ID, "kind", sess.Kind, "err", err)
	o.send(ctx, out, sess.ID, ApologyText)
	return Outcome{
		Kind:    OutcomeFailed,
		Text:    ApologyText,
		Failure: domain.NewFailure(domain.FailureGeneration, err),
	}
}

// send delivers text. Delivery failures never abort the turn.
func (o *Orchestrator) send(ctx context.Context, out ports.Sender, sessionID, text string) {
	if err := out.SendText(ctx, sessionID, text); err != nil {
		o.logger.Warn("text delivery failed", "session_id", sessionID, "err", err)
	}
}

func (o *Orchestrator) step(ctx context.Context, typ domain.EventType, sess *domain.Session, start time.Time, err error) {
	if o.hooks.OnStep == nil {
		return
	}
	o.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: o.event(typ, sess.ID),
		Kind:      sess.Kind,
		Duration:  o.now().Sub(start),
		IsError:   err != nil,
	})
}

func (o *Orchestrator) event(typ domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: o.now(), Type: typ, SessionID: sessionID}
}

// parseCommand recognises "/name" and "/name@bot". Arguments are ignored.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), true
}

func caption(kind domain.DocumentKind, f ports.Format) string {
	if kind.IsGeneral() {
		return fmt.Sprintf("AI response in %s format", f.Name)
	}
	return fmt.Sprintf("Professional %s version with proper formatting", f.Name)
}

func successText(f ports.Format) string {
	return "✅ *Document Generated Successfully!*\n\n" +
		fmt.Sprintf("Your document has been created and sent as %s.\n\n", f.Name) +
		"Type /menu to return to main menu."
}
