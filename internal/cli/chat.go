package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/docket/internal/presentation/tui"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/runner"
)

// ChatOptions configures an interactive console session.
type ChatOptions struct {
	SessionID    string
	Plain        bool // no banner, no markdown rendering
	ExitOnCancel bool
	Interactive  *bool // nil detects a terminal
}

// RunChat drives a console conversation until input ends or ctx is cancelled.
// An existing session is resumed where it stopped; a new one starts at the menu.
func RunChat(ctx context.Context, app *App, in io.Reader, out io.Writer, opts ChatOptions) error {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = runner.DefaultSessionID
	}

	consoleOpts := []runner.ConsoleOption{
		runner.WithSessionID(sessionID),
		runner.WithOutputDir(app.Config.OutputDir),
	}
	if !opts.Plain {
		consoleOpts = append(consoleOpts, runner.WithRenderer(tui.NewRenderer(0)))
		tui.PrintBanner(out)
	}
	if opts.Interactive != nil {
		consoleOpts = append(consoleOpts, runner.WithInteractive(*opts.Interactive))
	}
	console := runner.NewConsole(in, out, consoleOpts...)

	greet := true
	if sess, err := app.Sessions.Load(ctx, sessionID); err == nil {
		greet = false
		app.Logger.Info("Session Resumed", "session_id", sessionID, "state", sess.State)
		printSystemMessage(out, "Resuming session '%s' (%s).", sessionID, sess.State)
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	loop := runner.NewLoop(app.Orchestrator,
		runner.WithGreeting(greet),
		runner.WithExitOnCancel(opts.ExitOnCancel),
		runner.WithLogger(app.Logger),
	)
	err := loop.Run(ctx, console, sessionID)
	if sc, ok := ctx.(*SignalContext); ok && !opts.Plain {
		logCompletion(out, sessionID, sc.Signal())
	}
	return handleExecutionError(err)
}
