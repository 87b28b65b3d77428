package process

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestGenerate_PassesFactsAsEnv(t *testing.T) {
	requireShell(t)
	g, err := New(Config{
		Command: "sh",
		Args:    []string{"-c", `echo "$DOCKET_MODE $DOCKET_KIND $DOCKET_ARG_FULL_NAME $GREETING"`},
		Env:     map[string]string{"GREETING": "hi"},
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), ports.GenerationRequest{
		Kind:  domain.KindAffidavit,
		Text:  "need an affidavit",
		Facts: domain.Facts{domain.FactFullName: "Jane Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, "generate affidavit Jane Doe hi", out)
}

func TestGenerate_ReadsStdin(t *testing.T) {
	requireShell(t)
	g, err := New(Config{Command: "sh", Args: []string{"-c", "cat"}})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), ports.GenerationRequest{Kind: domain.KindLetter, Text: "a letter; rm -rf /"})
	require.NoError(t, err)
	assert.Contains(t, out, `"mode":"generate"`)
	assert.Contains(t, out, `"text":"a letter; rm -rf /"`)
	assert.Contains(t, out, `"prompt":"Create a letter based on this request: a letter; rm -rf /"`)
}

func TestGenerate_Failures(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	g, _ := New(Config{Command: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
	_, err := g.Generate(ctx, ports.GenerationRequest{Kind: domain.KindGeneral})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	g, _ = New(Config{Command: "sh", Args: []string{"-c", "true"}})
	_, err = g.Generate(ctx, ports.GenerationRequest{Kind: domain.KindGeneral})
	assert.ErrorIs(t, err, ErrEmptyOutput)

	g, _ = New(Config{Command: "sh", Args: []string{"-c", "sleep 5"}})
	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = g.Generate(tctx, ports.GenerationRequest{Kind: domain.KindGeneral})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNeedsMoreInfo(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	g, _ := New(Config{Command: "sh", Args: []string{"-c", `echo "QUESTION: What is the date of the $DOCKET_KIND?"`}})
	q, err := g.NeedsMoreInfo(ctx, domain.KindContract, "a contract")
	require.NoError(t, err)
	assert.Equal(t, "What is the date of the contract?", q)

	g, _ = New(Config{Command: "sh", Args: []string{"-c", "echo GENERATE"}})
	q, err = g.NeedsMoreInfo(ctx, domain.KindContract, "a contract")
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestNew_RequiresCommand(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "OTHER_PARTY", envName("other_party"))
	assert.Equal(t, "A_B_C", envName("a.b-c"))
}
