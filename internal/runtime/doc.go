// Package runtime holds the collection state machine that moves a session from the
// menu through kind selection into fact collection and generation.
package runtime
