package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docket version ")
}

func TestCatalogList(t *testing.T) {
	t.Setenv("DOCKET_CATALOG_FILE", "")
	out, err := execute(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "affidavit")
	assert.Contains(t, out, "full_name, address, purpose, facts")
	assert.NotContains(t, out, "general")
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("kinds:\n  - kind: memo\n    label: Memo\n    required: [subject]\n"), 0o644))

	_, err := execute(t, "catalog", "validate", bad)
	assert.ErrorContains(t, err, "validation failed")
}
