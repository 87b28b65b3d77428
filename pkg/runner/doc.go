/*
Package runner drives a conversation over a ports.Channel.

It reads user text from the channel, hands each message to a TurnHandler
(normally a conversation.Orchestrator) and lets the handler answer through the
same channel. Input is sanitized before it reaches the handler.

# Key Components

  - Console: an interactive channel on a reader and a writer, with optional
    markdown rendering and artifact files written to a directory.
  - Loop: the receive / handle cycle, stopping on EOF, cancellation or /cancel.
  - Sanitizer: size, encoding and control-character checks shared by every channel.

# Usage

	console := runner.NewConsole(os.Stdin, os.Stdout, runner.WithOutputDir("out"))
	loop := runner.NewLoop(orchestrator, runner.WithGreeting(true))
	if err := loop.Run(ctx, console, console.SessionID()); err != nil {
		log.Fatal(err)
	}
*/
package runner
