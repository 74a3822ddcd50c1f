package runtime

import "github.com/aretw0/formflow/pkg/domain"

// FindNode returns the node with the given id.
// Node ids are assumed unique; on duplicates the first in document order wins.
func FindNode(schema *domain.Schema, id string) (*domain.Node, bool) {
	if schema == nil {
		return nil, false
	}
	for i := range schema.Nodes {
		if schema.Nodes[i].ID == id {
			return &schema.Nodes[i], true
		}
	}
	return nil, false
}

// EntryNode returns the first node of the schema, whatever its kind.
func EntryNode(schema *domain.Schema) (*domain.Node, bool) {
	if schema == nil || len(schema.Nodes) == 0 {
		return nil, false
	}
	return &schema.Nodes[0], true
}

// NextNode follows the first edge leaving currentID, in document order.
// Edge conditions are not evaluated. It reports false when there is no such edge
// or when the edge points at a node that does not exist.
func NextNode(schema *domain.Schema, currentID string) (*domain.Node, bool) {
	if schema == nil {
		return nil, false
	}
	for _, edge := range schema.Edges {
		if edge.Source == currentID {
			return FindNode(schema, edge.Target)
		}
	}
	return nil, false
}

// nextID is the id of the node following currentID, or EndSentinel.
func nextID(schema *domain.Schema, currentID string) string {
	if next, ok := NextNode(schema, currentID); ok {
		return next.ID
	}
	return EndSentinel
}
