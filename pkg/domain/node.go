package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// NodeKind identifies the behavior of a node.
type NodeKind string

const (
	KindStart  NodeKind = "start"
	KindInput  NodeKind = "input"
	KindChoice NodeKind = "choice"
	KindEnd    NodeKind = "end"

	// Editor kinds the engine carries but never interprets.
	KindTransaction NodeKind = "transaction"
	KindLogic       NodeKind = "logic"
)

// IsKnown reports whether the engine interprets nodes of this kind.
func (k NodeKind) IsKnown() bool {
	switch k {
	case KindStart, KindInput, KindChoice, KindEnd:
		return true
	}
	return false
}

// NodeData is the kind-specific payload of a node.
// The set of implementations is closed to this package.
type NodeData interface {
	nodeData()
}

// Validation holds the validation rules an editor attaches to a node.
type Validation struct {
	Required bool `json:"required,omitempty" mapstructure:"required"`
}

// StartData is the payload of the entry node.
type StartData struct {
	Label       string `json:"label,omitempty" mapstructure:"label"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// InputData is the payload of a free-text question.
// Editors write the required flag either at the top level or under validation.
type InputData struct {
	Label       string     `json:"label,omitempty" mapstructure:"label"`
	Placeholder string     `json:"placeholder,omitempty" mapstructure:"placeholder"`
	Description string     `json:"description,omitempty" mapstructure:"description"`
	Required    bool       `json:"required,omitempty" mapstructure:"required"`
	Validation  Validation `json:"validation,omitempty" mapstructure:"validation"`
}

// IsRequired reports whether an answer must be non-empty.
func (d InputData) IsRequired() bool { return d.Required || d.Validation.Required }

// Option is one selectable answer of a choice node.
type Option struct {
	Label string `json:"label" mapstructure:"label"`
	Value string `json:"value" mapstructure:"value"`
}

// ChoiceData is the payload of a multiple-choice question.
type ChoiceData struct {
	Label       string     `json:"label,omitempty" mapstructure:"label"`
	Description string     `json:"description,omitempty" mapstructure:"description"`
	Options     []Option   `json:"options,omitempty" mapstructure:"options"`
	Required    bool       `json:"required,omitempty" mapstructure:"required"`
	Validation  Validation `json:"validation,omitempty" mapstructure:"validation"`
}

// IsRequired reports whether an option must be chosen.
func (d ChoiceData) IsRequired() bool { return d.Required || d.Validation.Required }

// HasOption reports whether value matches one of the declared option values.
func (d ChoiceData) HasOption(value string) bool {
	for _, opt := range d.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// EndData is the payload of a terminal node.
type EndData struct {
	Message     string `json:"message,omitempty" mapstructure:"message"`
	Title       string `json:"title,omitempty" mapstructure:"title"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// ExtensionData keeps the payload of kinds the engine does not interpret.
type ExtensionData struct {
	Raw json.RawMessage
}

func (StartData) nodeData()     {}
func (InputData) nodeData()     {}
func (ChoiceData) nodeData()    {}
func (EndData) nodeData()       {}
func (ExtensionData) nodeData() {}

// Node is a vertex of the form graph.
type Node struct {
	ID   string
	Kind NodeKind
	Data NodeData

	// Extra keeps editor fields (position, style, ...) so they survive a save.
	Extra map[string]json.RawMessage

	// rawData is the payload exactly as it was decoded.
	rawData json.RawMessage
}

// Description returns the explanatory text of the node, if its kind has one.
func (n *Node) Description() string {
	switch d := n.Data.(type) {
	case StartData:
		return d.Description
	case InputData:
		return d.Description
	case ChoiceData:
		return d.Description
	case EndData:
		return d.Description
	}
	return ""
}

// Label returns the prompt text of the node, if its kind has one.
func (n *Node) Label() string {
	switch d := n.Data.(type) {
	case StartData:
		return d.Label
	case InputData:
		return d.Label
	case ChoiceData:
		return d.Label
	}
	return ""
}

// UnmarshalJSON decodes a node written by the editor.
// Payloads are decoded leniently: a wrong-shaped field is left at its zero value.
func (n *Node) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("node: %w", err)
	}
	var id, kind string
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("node id: %w", err)
		}
	}
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &kind); err != nil {
			return fmt.Errorf("node %q type: %w", id, err)
		}
	}
	rawData := fields["data"]
	delete(fields, "id")
	delete(fields, "type")
	delete(fields, "data")

	*n = Node{
		ID:      id,
		Kind:    NodeKind(kind),
		Data:    DecodeNodeData(NodeKind(kind), rawData),
		rawData: rawData,
	}
	if len(fields) > 0 {
		n.Extra = fields
	}
	return nil
}

// MarshalJSON writes the node back in the editor's shape.
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+3)
	for k, v := range n.Extra {
		out[k] = v
	}
	out["id"] = n.ID
	out["type"] = string(n.Kind)
	switch {
	case n.rawData != nil:
		out["data"] = n.rawData
	case n.Data != nil:
		if ext, ok := n.Data.(ExtensionData); ok {
			if ext.Raw != nil {
				out["data"] = ext.Raw
			}
		} else {
			out["data"] = n.Data
		}
	}
	return json.Marshal(out)
}

// DecodeNodeData builds the typed payload for a node kind from its raw JSON.
func DecodeNodeData(kind NodeKind, raw json.RawMessage) NodeData {
	var fields map[string]any
	if len(raw) > 0 {
		// Non-object payloads decode as empty.
		_ = json.Unmarshal(raw, &fields)
	}
	switch kind {
	case KindStart:
		var d StartData
		weakDecode(fields, &d)
		return d
	case KindInput:
		var d InputData
		weakDecode(fields, &d)
		return d
	case KindChoice:
		var d ChoiceData
		weakDecode(fields, &d)
		return d
	case KindEnd:
		var d EndData
		weakDecode(fields, &d)
		return d
	}
	return ExtensionData{Raw: raw}
}

func weakDecode(input map[string]any, out any) {
	if input == nil {
		return
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return
	}
	// Partial results are kept; a field that fails to decode stays at its zero value.
	_ = dec.Decode(input)
}

// NewNode builds a node with a typed payload.
func NewNode(id string, kind NodeKind, data NodeData) Node {
	return Node{ID: id, Kind: kind, Data: data}
}
