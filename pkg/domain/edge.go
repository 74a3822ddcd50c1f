package domain

import (
	"encoding/json"
	"fmt"
)

// Condition is an editor-authored guard on an edge.
// It is stored and returned but not evaluated when choosing the next node.
type Condition struct {
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID        string
	Source    string
	Target    string
	Condition *Condition

	// Extra keeps editor fields (handles, animation, ...) so they survive a save.
	Extra map[string]json.RawMessage
}

func (e *Edge) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	var out Edge
	for key, dst := range map[string]*string{"id": &out.ID, "source": &out.Source, "target": &out.Target} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("edge %s: %w", key, err)
		}
		delete(fields, key)
	}
	if raw, ok := fields["condition"]; ok {
		var cond Condition
		if err := json.Unmarshal(raw, &cond); err == nil && cond.Operator != "" {
			out.Condition = &cond
			delete(fields, "condition")
		}
	}
	if len(fields) > 0 {
		out.Extra = fields
	}
	*e = out
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+4)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["id"] = e.ID
	out["source"] = e.Source
	out["target"] = e.Target
	if e.Condition != nil {
		out["condition"] = e.Condition
	}
	return json.Marshal(out)
}
