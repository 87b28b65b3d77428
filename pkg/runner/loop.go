package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/ports"
)

// TurnHandler processes one user message. conversation.Orchestrator implements it.
type TurnHandler interface {
	HandleTurn(ctx context.Context, turn conversation.Turn, out ports.Sender) (conversation.Outcome, error)
}

// Loop feeds channel input to a TurnHandler until the input ends.
type Loop struct {
	handler      TurnHandler
	logger       *slog.Logger
	greet        bool
	exitOnCancel bool
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithGreeting sends /start for the first session seen so the welcome menu is shown.
func WithGreeting(on bool) LoopOption {
	return func(l *Loop) {
		l.greet = on
	}
}

// WithExitOnCancel stops the loop after a /cancel turn.
func WithExitOnCancel(on bool) LoopOption {
	return func(l *Loop) {
		l.exitOnCancel = on
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop around h.
func NewLoop(h TurnHandler, opts ...LoopOption) *Loop {
	l := &Loop{handler: h, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until the channel returns io.EOF (nil), ctx ends (ctx error) or a
// read fails. Turn errors are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context, ch ports.Channel, greetSession string) error {
	if l.greet && greetSession != "" {
		l.turn(ctx, ch, conversation.Turn{SessionID: greetSession, Text: "/start"})
	}
	for {
		msg, err := ch.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		out := l.turn(ctx, ch, conversation.Turn{SessionID: msg.SessionID, Text: msg.Text})
		if l.exitOnCancel && out.Kind == conversation.OutcomeCancelled {
			return nil
		}
	}
}

func (l *Loop) turn(ctx context.Context, ch ports.Channel, turn conversation.Turn) conversation.Outcome {
	out, err := l.handler.HandleTurn(ctx, turn, ch)
	if err != nil {
		l.logger.Error("turn failed", "session_id", turn.SessionID, "err", err)
	}
	return out
}
