/*
Package conversation runs one user turn end to end.

The Orchestrator serializes turns per session, mines the text for facts, asks the
state machine what to do next and, when a document is due, drives the generator,
the renderer and the channel. A turn works on a copy of the session: a failed
generation leaves the stored session as it was, a failed render keeps the facts
and a failed delivery is only logged.
*/
package conversation
