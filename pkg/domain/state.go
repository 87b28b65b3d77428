package domain

// ConversationState is the dialogue position of a session.
type ConversationState string

const (
	StateMenu          ConversationState = "menu"                    // Initial state, top-level options
	StateSelectingKind ConversationState = "selecting_document_kind" // Waiting for a document kind choice
	StateChatting      ConversationState = "chatting"                // Free-form chat, no required fields
	StateCollecting    ConversationState = "collecting"              // Active document kind with a checklist
)

// Valid reports whether s is one of the known states.
func (s ConversationState) Valid() bool {
	switch s {
	case StateMenu, StateSelectingKind, StateChatting, StateCollecting:
		return true
	}
	return false
}

// Conversational reports whether free text in this state is a collection turn.
func (s ConversationState) Conversational() bool {
	return s == StateChatting || s == StateCollecting
}
