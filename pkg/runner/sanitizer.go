package runner

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds one user message, in bytes.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize for SanitizeInput.
const EnvMaxInputSize = "DOCKET_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// ansiSequence matches CSI and OSC escape sequences pasted from terminals.
var ansiSequence = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\))`)

// Sanitizer checks and cleans user text before it reaches the dialogue.
type Sanitizer struct {
	// MaxSize is the byte limit. Zero means DefaultMaxInputSize.
	MaxSize int
}

// Sanitize rejects oversized or non UTF-8 input, normalises line endings and
// removes terminal escape sequences and control characters other than newline and tab.
// Messages are rejected rather than truncated so a half answer is never stored as a fact.
func (s Sanitizer) Sanitize(input string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.ContainsRune(input, '\x1b') {
		input = ansiSequence.ReplaceAllString(input, "")
	}
	input = strings.ReplaceAll(input, "\r\n", "\n")

	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, input), nil
}

// SanitizeInput sanitizes with the limit from $DOCKET_MAX_INPUT_SIZE.
func SanitizeInput(input string) (string, error) {
	return Sanitizer{MaxSize: maxInputSizeFromEnv()}.Sanitize(input)
}

func maxInputSizeFromEnv() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
