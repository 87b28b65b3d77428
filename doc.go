/*
Package docket is a conversational document assistant.

It walks a user through a short multi-turn dialogue, collects the facts a document needs
(affidavit, letter, contract, certificate, application or custom), hands the facts and the
user's request to a generation backend and renders the result into a document that is
delivered back through the same conversation.

# Concept

A conversation is a small state machine: menu, kind selection, free chat and field collection.
Each user message is one turn. The assistant asks at most one question per turn, and once the
required facts are known it generates, renders and delivers exactly one document.

The core is hexagonal. Session storage, generation, rendering and delivery are ports, and the
module ships adapters for each: memory, go-cache, file and Redis stores; OpenAI-compatible
(Groq, OpenAI), Gemini, external-process and offline template generators; PDF and PNG renderers;
console, HTTP and MCP channels.

# Usage

	a, err := docket.New()
	if err != nil {
		log.Fatal(err)
	}
	reply, err := a.Send(ctx, "user-1", "/start")

Sessions are serialized per id, so channels may call Send concurrently for different users.
The docket command in cmd/docket wires the same pieces from a YAML file and environment variables.
*/
package docket
