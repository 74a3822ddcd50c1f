package domain

// Schema is the graph of a form. Node and edge order is the order the editor saved them in,
// and the engine relies on it: the first node is the entry, the first matching edge wins.
type Schema struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Form is an identified schema with display metadata.
type Form struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Schema      Schema `json:"schema"`
}
