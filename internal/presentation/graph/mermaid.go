package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/domain"
)

// Fixed node ids of the dialogue.
const (
	nodeMenu      = "menu"
	nodeSelecting = "selecting_document_kind"
	nodeChatting  = "chatting"
	nodeGenerate  = "generate"
)

// Overlay marks a session's position on the graph.
type Overlay struct {
	State   domain.ConversationState
	Kind    domain.DocumentKind
	Facts   domain.Facts
	Pending string
}

// OverlayFor builds the overlay of a stored session.
func OverlayFor(sess *domain.Session) *Overlay {
	if sess == nil {
		return nil
	}
	return &Overlay{State: sess.State, Kind: sess.Kind, Facts: sess.Facts, Pending: sess.PendingField}
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue for a catalog.
// It applies semantic styling:
// - Menu: ((Circle))
// - Generation: [[Subroutine]]
// - Input (kind selection, field questions): [/Parallelogram/]
// - Default: [Rectangle]
// Fields of a kind are chained in the order they are asked.
func GenerateMermaid(cat *catalog.Catalog, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	node(&sb, nodeMenu, nodeMenu, "((", "))")
	node(&sb, nodeSelecting, nodeSelecting, "[/", "/]")
	node(&sb, nodeChatting, nodeChatting, "[", "]")
	node(&sb, nodeGenerate, nodeGenerate, "[[", "]]")

	edge(&sb, nodeMenu, nodeChatting, "1 chat", false)
	edge(&sb, nodeMenu, nodeSelecting, "2 generate", false)
	edge(&sb, nodeMenu, nodeMenu, "3 help", false)
	edge(&sb, nodeSelecting, nodeMenu, "back", true)
	edge(&sb, nodeChatting, nodeGenerate, "", false)

	for i, kind := range cat.Kinds() {
		kindID := kindNode(kind)
		node(&sb, kindID, cat.Label(kind), "[", "]")
		edge(&sb, nodeSelecting, kindID, fmt.Sprintf("%d", i+1), false)

		prev := kindID
		for _, field := range cat.RequiredFields(kind) {
			id := fieldNode(kind, field)
			node(&sb, id, field, "[/", "/]")
			edge(&sb, prev, id, "", false)
			prev = id
		}
		edge(&sb, prev, nodeGenerate, "", false)
	}
	edge(&sb, nodeGenerate, nodeMenu, "/menu", true)

	if overlay != nil {
		writeOverlay(&sb, cat, overlay)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, cat *catalog.Catalog, o *Overlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	current := stateNode(o.State)
	if o.Kind != "" && !o.Kind.IsGeneral() && cat.Has(o.Kind) {
		fmt.Fprintf(sb, "    class %s visited;\n", kindNode(o.Kind))
		for _, field := range cat.RequiredFields(o.Kind) {
			if o.Facts.Has(field) {
				fmt.Fprintf(sb, "    class %s visited;\n", fieldNode(o.Kind, field))
			}
		}
		current = kindNode(o.Kind)
		if o.Pending != "" {
			current = fieldNode(o.Kind, o.Pending)
		}
	}
	fmt.Fprintf(sb, "    class %s current;\n", current)
}

func stateNode(s domain.ConversationState) string {
	switch s {
	case domain.StateSelectingKind:
		return nodeSelecting
	case domain.StateChatting:
		return nodeChatting
	}
	return nodeMenu
}

func node(sb *strings.Builder, id, label, opener, closer string) {
	label = strings.ReplaceAll(label, "\"", "'")
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)
}

func edge(sb *strings.Builder, from, to, label string, dotted bool) {
	arrow := "-->"
	if dotted {
		arrow = "-.->"
	}
	if label != "" {
		label = strings.ReplaceAll(label, "\"", "'")
		arrow = fmt.Sprintf("-- \"%s\" -->", label)
		if dotted {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
	}
	fmt.Fprintf(sb, "    %s %s %s\n", from, arrow, to)
}

func kindNode(kind domain.DocumentKind) string {
	return "kind_" + sanitizeMermaidID(string(kind))
}

func fieldNode(kind domain.DocumentKind, field string) string {
	return sanitizeMermaidID(string(kind)) + "__" + sanitizeMermaidID(field)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
