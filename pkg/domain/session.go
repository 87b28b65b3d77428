package domain

import "time"

// Session is the per-conversation state tracked across turns.
type Session struct {
	ID string `json:"id"`

	// State is the dialogue position.
	State ConversationState `json:"state"`

	// Kind is the active document kind. Empty while in the menu.
	Kind DocumentKind `json:"kind,omitempty"`

	// Facts holds every value collected for the active kind.
	Facts Facts `json:"facts"`

	// PendingField is the single fact currently being asked for.
	// When set, the next turn is taken verbatim as its value.
	PendingField string `json:"pending_field,omitempty"`

	// Turns counts the collection turns processed since the last reset.
	Turns int `json:"turns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session positioned at the menu.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		State:     StateMenu,
		Facts:     make(Facts),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset clears the kind, facts and pending field together and returns to the menu.
func (s *Session) Reset() {
	s.State = StateMenu
	s.Kind = ""
	s.Facts = make(Facts)
	s.PendingField = ""
	s.Turns = 0
	s.UpdatedAt = time.Now().UTC()
}

// Begin activates kind with an empty fact set.
func (s *Session) Begin(kind DocumentKind) {
	s.Kind = kind
	s.Facts = make(Facts)
	s.PendingField = ""
	s.Turns = 0
	if kind.IsGeneral() {
		s.State = StateChatting
	} else {
		s.State = StateCollecting
	}
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so a turn can be discarded without touching the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Facts = s.Facts.Clone()
	return &out
}
