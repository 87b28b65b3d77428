package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/domain"
)

// Fixed replies of the dialogue. Markdown is rendered by channels that support it.
const (
	WelcomeText = "*Welcome to AI Document Assistant!*\n\n" +
		"I can help you:\n" +
		"• Chat and get AI responses\n" +
		"• Generate professional documents\n" +
		"• Create properly formatted PDFs\n\n" +
		"Choose an option:\n" +
		"1. Chat with AI\n" +
		"2. Generate Document\n" +
		"3. Help"

	ChatModeText = "*Chat Mode*\n\n" +
		"Ask me anything! I can help with:\n" +
		"• General questions and answers\n" +
		"• Document advice\n" +
		"• Writing assistance\n" +
		"• Any other queries\n\n" +
		"*Note:* All responses will be provided as text AND a document\n\n" +
		"Type /menu to return to main menu."

	HelpText = "*Help*\n\n" +
		"*Commands:*\n" +
		"/start - Show main menu\n" +
		"/menu - Return to main menu\n" +
		"/cancel - Clear the conversation\n" +
		"/help - Show this message\n\n" +
		"*Features:*\n" +
		"• Chat with AI\n" +
		"• Generate documents with proper formatting\n" +
		"• Automatic data collection\n" +
		"• Professional PDF generation\n\n" +
		"Type /menu to return to main menu."

	CancelText = "Cancelled. Use /start to begin again."

	unknownOptionText = "Sorry, I did not understand that option.\n\n"
	unknownKindText   = "Sorry, that is not a document type I know.\n\n"
)

// KindListText renders the kind selection prompt.
func KindListText(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("*Select Document Type*\n\nChoose the type of document:\n")
	for i, k := range c.Kinds() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Label(k))
	}
	b.WriteString("\nType back to return to the main menu.")
	return b.String()
}

// KindIntroText is shown once a kind has been chosen.
func KindIntroText(c *catalog.Catalog, kind domain.DocumentKind) string {
	return fmt.Sprintf("*Creating %s*\n\n"+
		"Describe what you need. I'll create a professional document based on your description.\n\n"+
		"*Example:* \"I need an affidavit for address proof. My name is John Doe, I live at 123 Main Street, Delhi 110001\"\n\n"+
		"Type /menu to return to main menu.", c.Label(kind))
}

// QuestionText wraps a follow-up question asked by the generator.
func QuestionText(q string) string {
	return fmt.Sprintf("I need some more information:\n\n*%s*", q)
}
