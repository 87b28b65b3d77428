package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name: "Valid",
			yaml: `
kinds:
  - kind: nda
    label: Non-Disclosure Agreement
    required: [full_name, other_party]
    prompts:
      full_name: "What is your full name?"
      other_party: "Who is the other party?"
`,
		},
		{
			name: "Valid Extension",
			yaml: `
extend: true
kinds:
  - kind: certificate
    label: Certificate
    required: [full_name]
    prompts:
      full_name: "Name on the certificate?"
`,
		},
		{
			name:    "Empty",
			yaml:    "kinds: []",
			wantErr: []string{"no kinds defined"},
		},
		{
			name: "Every Problem Reported",
			yaml: `
kinds:
  - kind: nda
    label: Agreement
    required: [full_name]
  - kind: nda
    label: agreement
  - kind: "7"
  - label: Nameless
  - kind: memo
    required: [subject]
    prompts:
      subject: "Subject?"
      footer: "Footer?"
`,
			wantErr: []string{
				"found 6 errors",
				"kind 'nda': kind \"nda\" has no prompt for required field \"full_name\"",
				"kind 'nda': defined twice",
				"label 'agreement' already used by 'nda'",
				"kind '7': numeric kinds collide with menu numbers",
				"kinds[3]: descriptor without kind",
				"kind 'memo': prompt for 'footer' is never asked",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalog([]byte(tt.yaml))
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err.Error(), want)
				}
			}
		})
	}
}

func TestValidateCatalogFile(t *testing.T) {
	if err := ValidateCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("kinds: [{kind: x}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateCatalogFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
