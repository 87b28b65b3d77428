package ports

import (
	"context"

	"github.com/aretw0/docket/pkg/domain"
)

// Inbound is one piece of user text received on a channel.
type Inbound struct {
	SessionID string
	Text      string
}

// Receiver yields user text. Implementations must preserve per-session ordering.
type Receiver interface {
	// Receive blocks until the next message arrives.
	// Returns io.EOF when the channel is closed.
	Receive(ctx context.Context) (Inbound, error)
}

// Sender delivers replies back to the user.
type Sender interface {
	SendText(ctx context.Context, sessionID, text string) error
	SendArtifact(ctx context.Context, sessionID string, artifact domain.Artifact) error
}

// Channel is a bidirectional conversation channel.
type Channel interface {
	Receiver
	Sender
}
