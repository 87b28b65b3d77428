package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"golang.org/x/term"
)

// DefaultSessionID is the console session when none is configured.
const DefaultSessionID = "console"

// ContentRenderer transforms reply text (e.g. markdown) before it is printed.
type ContentRenderer func(string) (string, error)

// Console is a ports.Channel over a reader and a writer. It serves exactly one session.
type Console struct {
	reader      *bufio.Reader
	writer      io.Writer
	sessionID   string
	renderer    ContentRenderer
	outputDir   string
	interactive bool

	mu        sync.Mutex
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithSessionID sets the session the console talks for.
func WithSessionID(id string) ConsoleOption {
	return func(c *Console) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithRenderer configures the reply renderer.
func WithRenderer(r ContentRenderer) ConsoleOption {
	return func(c *Console) {
		c.renderer = r
	}
}

// WithOutputDir sets where artifacts are written. Defaults to the working directory.
func WithOutputDir(dir string) ConsoleOption {
	return func(c *Console) {
		c.outputDir = dir
	}
}

// WithInteractive forces the prompt on or off. By default it is shown when the
// reader is a terminal.
func WithInteractive(on bool) ConsoleOption {
	return func(c *Console) {
		c.interactive = on
	}
}

// NewConsole creates a console channel. Nil arguments fall back to Stdin and Stdout.
func NewConsole(r io.Reader, w io.Writer, opts ...ConsoleOption) *Console {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	c := &Console{
		reader:      bufio.NewReader(r),
		writer:      w,
		sessionID:   DefaultSessionID,
		outputDir:   ".",
		interactive: isTerminal(r),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the console session.
func (c *Console) SessionID() string {
	return c.sessionID
}

func (c *Console) initPump() {
	c.startOnce.Do(func() {
		c.inputChan = make(chan inputResult)
		go c.pump()
	})
}

// pump serializes blocking reads so Receive can honour ctx.
func (c *Console) pump() {
	for {
		text, err := c.reader.ReadString('\n')
		if text != "" {
			c.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(c.inputChan)
				return
			}
			c.inputChan <- inputResult{err: err}
			// Backoff for persistent read failures
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Receive returns the next non-empty, sanitized line.
func (c *Console) Receive(ctx context.Context) (ports.Inbound, error) {
	c.initPump()
	for {
		select {
		case <-ctx.Done():
			return ports.Inbound{}, ctx.Err()
		default:
		}
		if c.interactive {
			c.write("> ")
		}

		select {
		case <-ctx.Done():
			return ports.Inbound{}, ctx.Err()
		case res, ok := <-c.inputChan:
			if !ok {
				return ports.Inbound{}, io.EOF
			}
			if res.err != nil {
				return ports.Inbound{}, res.err
			}
			text := strings.TrimSpace(res.text)
			if text == "" {
				continue
			}
			clean, err := SanitizeInput(text)
			if err != nil {
				c.write(fmt.Sprintf("Error: %v. Please try again.\n", err))
				continue
			}
			return ports.Inbound{SessionID: c.sessionID, Text: clean}, nil
		}
	}
}

func (c *Console) SendText(ctx context.Context, sessionID, text string) error {
	output := text
	if c.renderer != nil {
		if rendered, err := c.renderer(text); err == nil {
			output = rendered
		}
	}
	return c.write(strings.TrimSpace(output) + "\n")
}

// SendArtifact writes the artifact under the output directory and prints its path.
func (c *Console) SendArtifact(ctx context.Context, sessionID string, artifact domain.Artifact) error {
	name := filepath.Base(artifact.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return fmt.Errorf("%w: invalid artifact filename %q", domain.ErrDelivery, artifact.Filename)
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	path := filepath.Join(c.outputDir, name)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	line := "Saved " + path
	if artifact.Caption != "" {
		line += " (" + artifact.Caption + ")"
	}
	return c.write(line + "\n")
}

func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, s)
	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
