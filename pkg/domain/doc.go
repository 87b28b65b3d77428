/*
Package domain contains the core domain models of the docket assistant.

It defines the entities the dialogue state machine operates on: the per-conversation
Session, the collected Facts, the document kinds known to the catalog and the explicit
failure types a turn can end with. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Session: the mutable per-conversation state (dialogue position, active kind, facts, pending field).
  - Facts: structured user-provided values keyed by name (e.g. "address").
  - DocumentKind: the category of output document with its own required-fact checklist.
  - Failure: the typed result of a turn that could not complete (generation, render, delivery).
*/
package domain
