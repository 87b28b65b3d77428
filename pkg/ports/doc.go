/*
Package ports defines the driven ports (interfaces) of the docket assistant.

These interfaces decouple the dialogue core from external implementations, allowing the
orchestrator to work with various storage backends, transports, generation backends and
document renderers.

# Key Interfaces

  - SessionStore: persists and loads sessions by ID.
  - DistributedLocker: serializes turns of one session across replicas.
  - Sender / Receiver: the conversation channel (console, HTTP, MCP).
  - Generator / InfoChecker: turn a prompt plus facts into document prose.
  - Renderer: turns generated prose into a document artifact.
*/
package ports
