package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Receive(t *testing.T) {
	in := strings.NewReader("hello\n\n   \nMy name is Jane Doe\x07\nlast")
	var out bytes.Buffer
	c := NewConsole(in, &out, WithSessionID("cli-1"), WithInteractive(false))
	ctx := context.Background()

	for _, want := range []string{"hello", "My name is Jane Doe", "last"} {
		msg, err := c.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cli-1", msg.SessionID)
		assert.Equal(t, want, msg.Text)
	}
	_, err := c.Receive(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, out.String(), "non-interactive console prints no prompt")
}

func TestConsole_Receive_PromptAndRetry(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "5")
	in := strings.NewReader("far too long\nok\n")
	var out bytes.Buffer
	c := NewConsole(in, &out, WithInteractive(true))

	msg, err := c.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Text)
	assert.Equal(t, DefaultSessionID, msg.SessionID)
	assert.Contains(t, out.String(), "> ")
	assert.Contains(t, out.String(), "Please try again")
}

func TestConsole_Receive_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewConsole(pr, io.Discard, WithInteractive(false))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsole_SendText(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, WithRenderer(func(s string) (string, error) {
		return "<" + s + ">", nil
	}))

	require.NoError(t, c.SendText(context.Background(), "s", "  hi  "))
	assert.Equal(t, "<  hi  >\n", out.String())
}

func TestConsole_SendArtifact(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, WithOutputDir(filepath.Join(dir, "docs")))

	err := c.SendArtifact(context.Background(), "s", domain.Artifact{
		Filename: "../../affidavit_20261014_093000.pdf",
		Caption:  "Your affidavit document",
		Data:     []byte("%PDF-1.3"),
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "docs", "affidavit_20261014_093000.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
	assert.Contains(t, out.String(), "Saved "+path+" (Your affidavit document)")
}

func TestConsole_SendArtifact_InvalidName(t *testing.T) {
	c := NewConsole(strings.NewReader(""), io.Discard, WithOutputDir(t.TempDir()))

	err := c.SendArtifact(context.Background(), "s", domain.Artifact{Filename: ""})
	assert.ErrorIs(t, err, domain.ErrDelivery)
}
