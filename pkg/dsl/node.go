package dsl

import (
	"encoding/json"

	"github.com/aretw0/formflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id      string
	kind    domain.NodeKind
	builder *Builder

	label       string
	description string
	placeholder string
	message     string
	title       string
	required    bool
	options     []domain.Option
	extension   map[string]any
	lastEdge    int
}

// Start marks the node as a start node with the given prompt.
func (n *NodeBuilder) Start(label string) *NodeBuilder {
	n.kind = domain.KindStart
	n.label = label
	return n
}

// Input marks the node as a free-text question.
func (n *NodeBuilder) Input(label string) *NodeBuilder {
	n.kind = domain.KindInput
	n.label = label
	return n
}

// Choice marks the node as a question answered by one of its options.
func (n *NodeBuilder) Choice(label string) *NodeBuilder {
	n.kind = domain.KindChoice
	n.label = label
	return n
}

// End marks the node as an end node showing message.
func (n *NodeBuilder) End(message string) *NodeBuilder {
	n.kind = domain.KindEnd
	n.message = message
	return n
}

// Extension marks the node with a kind the engine does not interpret.
// data is written verbatim as the node payload.
func (n *NodeBuilder) Extension(kind domain.NodeKind, data map[string]any) *NodeBuilder {
	n.kind = kind
	n.extension = data
	return n
}

// Describe sets the explanatory text shown under the prompt.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.description = description
	return n
}

// Placeholder sets the hint of an input node.
func (n *NodeBuilder) Placeholder(text string) *NodeBuilder {
	n.placeholder = text
	return n
}

// Title sets the heading of an end node.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.title = title
	return n
}

// Required rejects empty answers.
func (n *NodeBuilder) Required() *NodeBuilder {
	n.required = true
	return n
}

// Option adds a choice option.
func (n *NodeBuilder) Option(label, value string) *NodeBuilder {
	n.options = append(n.options, domain.Option{Label: label, Value: value})
	return n
}

// Go adds an edge to the target node. Only the first edge of a node is followed.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.id, target)
	n.lastEdge = len(n.builder.edges)
	return n
}

// When attaches a condition to the edge added by the previous Go.
// Conditions are stored with the form; the engine does not evaluate them.
func (n *NodeBuilder) When(operator string, value any) *NodeBuilder {
	if n.lastEdge > 0 {
		n.builder.edges[n.lastEdge-1].Condition = &domain.Condition{Operator: operator, Value: value}
	}
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	v := domain.Validation{Required: n.required}
	switch n.kind {
	case domain.KindStart:
		return domain.NewNode(n.id, n.kind, domain.StartData{Label: n.label, Description: n.description})
	case domain.KindInput:
		return domain.NewNode(n.id, n.kind, domain.InputData{
			Label:       n.label,
			Placeholder: n.placeholder,
			Description: n.description,
			Validation:  v,
		})
	case domain.KindChoice:
		return domain.NewNode(n.id, n.kind, domain.ChoiceData{
			Label:       n.label,
			Description: n.description,
			Options:     n.options,
			Validation:  v,
		})
	case domain.KindEnd:
		return domain.NewNode(n.id, n.kind, domain.EndData{
			Message:     n.message,
			Title:       n.title,
			Description: n.description,
		})
	default:
		var raw json.RawMessage
		if n.extension != nil {
			// map[string]any always encodes.
			raw, _ = json.Marshal(n.extension)
		}
		return domain.NewNode(n.id, n.kind, domain.ExtensionData{Raw: raw})
	}
}
