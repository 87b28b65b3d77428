package conversation

import "github.com/aretw0/docket/pkg/domain"

// OutcomeKind classifies how a turn ended.
type OutcomeKind string

const (
	// OutcomeReply is a menu, help or selection reply.
	OutcomeReply OutcomeKind = "reply"
	// OutcomeAsked means one question was sent and the session waits for the answer.
	OutcomeAsked OutcomeKind = "asked"
	// OutcomeGenerated means a document was generated. Failure may still report a render or delivery problem.
	OutcomeGenerated OutcomeKind = "generated"
	// OutcomeReset follows /start or /menu.
	OutcomeReset OutcomeKind = "reset"
	// OutcomeCancelled follows /cancel.
	OutcomeCancelled OutcomeKind = "cancelled"
	// OutcomeFailed means generation failed and nothing was committed.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the explicit result of HandleTurn.
type Outcome struct {
	Kind OutcomeKind
	// Session is the session as stored after the turn.
	Session *domain.Session
	// Field is the fact asked for, when Kind is OutcomeAsked.
	Field string
	// Text is the last message sent to the user.
	Text string
	// Generated is the generator output, when a document was produced.
	Generated string
	// Artifact is the rendered document, when rendering succeeded.
	Artifact *domain.Artifact
	// Failure is set when generation, rendering or delivery failed.
	Failure *domain.Failure
}
