// Package prompt builds the chat prompts shared by the LLM-backed generators.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GeneralInstructions is used when a kind carries no instructions of its own.
const GeneralInstructions = "You are a professional assistant. Provide helpful, well-structured responses. Be comprehensive and informative."

// Markers of the info check protocol.
const (
	GenerateMarker = "GENERATE"
	QuestionMarker = "QUESTION:"
)

// System returns the system prompt of a generation request.
func System(req ports.GenerationRequest) string {
	if s := strings.TrimSpace(req.Instructions); s != "" {
		return s
	}
	return GeneralInstructions
}

// User returns the user prompt: the raw request plus every collected fact except purpose,
// which already is the request in most cases.
func User(req ports.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s based on this request: %s", kindName(req.Kind), req.Text)

	keys := make([]string, 0, len(req.Facts))
	for _, k := range req.Facts.Keys() {
		if k != domain.FactPurpose && req.Facts.Has(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return b.String()
	}

	b.WriteString("\n\nExtracted information:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %s", Label(k), req.Facts[k])
	}
	return b.String()
}

// Label turns a fact key into a title-cased label ("full_name" -> "Full Name").
func Label(key string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// InfoCheckSystem asks the model to answer GENERATE or QUESTION: <question>.
func InfoCheckSystem(kind domain.DocumentKind) string {
	return fmt.Sprintf(`You are an AI assistant that determines if there's enough information to create a %s.

Analyze the user's request and decide:
1. If there's enough information to create a complete document, respond with: "%s"
2. If you need more specific information, respond with: "%s [ask a specific question]"

Be smart - only ask for truly essential information that cannot be reasonably assumed or left as placeholders.`,
		kindName(kind), GenerateMarker, QuestionMarker)
}

// InfoCheckUser is the user turn of the info check.
func InfoCheckUser(kind domain.DocumentKind, text string) string {
	return fmt.Sprintf("User wants to create a %s. Their request: %s", kindName(kind), text)
}

// ParseInfoCheck returns the follow-up question, or "" for anything that is not a question.
func ParseInfoCheck(response string) string {
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, QuestionMarker) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(response, QuestionMarker))
}

func kindName(kind domain.DocumentKind) string {
	if kind == "" {
		return string(domain.KindGeneral)
	}
	return string(kind)
}
