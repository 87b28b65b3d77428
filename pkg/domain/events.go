package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventQuestion EventType = "question"
	EventGenerate EventType = "generate"
	EventRender   EventType = "render"
	EventDeliver  EventType = "deliver"
	EventReset    EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// QuestionEvent is emitted when the machine asks for a field.
type QuestionEvent struct {
	EventBase
	Kind  DocumentKind `json:"kind"`
	Field string       `json:"field,omitempty"`
}

// StepEvent reports an external call (generate, render or deliver).
type StepEvent struct {
	EventBase
	Kind     DocumentKind  `json:"kind"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// ResetEvent is emitted on menu return, cancel or explicit reset.
type ResetEvent struct {
	EventBase
	Reason string `json:"reason"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnQuestion func(context.Context, *QuestionEvent)
	OnStep     func(context.Context, *StepEvent)
	OnReset    func(context.Context, *ResetEvent)
}
