package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// GraphOverlay contains participant data to visualize on the graph.
type GraphOverlay struct {
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart of a form schema.
// Node shapes follow the node kind:
//   - Start: ((Circle))
//   - Input: [/Parallelogram/]
//   - Choice: {Rhombus}
//   - End: ([Stadium])
//   - Extension kinds: [[Subroutine]]
//
// Only the first edge leaving a node is followed at runtime; the others are drawn dotted.
func GenerateMermaid(schema domain.Schema, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range schema.Nodes {
		opener, closer := shape(node.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, nodeLabel(node), closer)
	}

	followed := make(map[string]bool)
	for _, e := range schema.Edges {
		arrow := "-->"
		dotted := followed[e.Source]
		if dotted {
			arrow = "-.->"
		}
		followed[e.Source] = true

		if cond := conditionLabel(e.Condition); cond != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", cond)
			if dotted {
				arrow = fmt.Sprintf("-. \"%s\" .->", cond)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil && overlay.CurrentNode != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps the highlight readable on both light and dark themes.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
	}

	return sb.String()
}

func shape(kind domain.NodeKind) (string, string) {
	switch kind {
	case domain.KindStart:
		return "((", "))"
	case domain.KindInput:
		return "[/", "/]"
	case domain.KindChoice:
		return "{", "}"
	case domain.KindEnd:
		return "([", "])"
	default:
		return "[[", "]]"
	}
}

func nodeLabel(node domain.Node) string {
	label := node.ID
	if text := node.Label(); text != "" {
		label += ": " + text
	}
	return escape(label)
}

func conditionLabel(c *domain.Condition) string {
	if c == nil || c.Operator == "" {
		return ""
	}
	if c.Value == nil {
		return escape(c.Operator)
	}
	return escape(fmt.Sprintf("%s %v", c.Operator, c.Value))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
