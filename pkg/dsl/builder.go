package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
)

// ErrEmptyForm is returned when a form without nodes is built.
var ErrEmptyForm = errors.New("form has no nodes")

// Builder manages the form construction. Nodes and edges keep the order they were
// added in, so the first node added is the entry node.
type Builder struct {
	id          string
	title       string
	description string
	order       []*NodeBuilder
	nodes       map[string]*NodeBuilder
	edges       []domain.Edge
}

// New creates a new form builder.
func New(id, title string) *Builder {
	return &Builder{
		id:    id,
		title: title,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Describe sets the form description.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Add creates a new node in the form.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id, kind: domain.KindStart, builder: b}
	b.nodes[id] = nb
	b.order = append(b.order, nb)
	return nb
}

func (b *Builder) connect(source, target string) {
	b.edges = append(b.edges, domain.Edge{
		ID:     fmt.Sprintf("e%d", len(b.edges)+1),
		Source: source,
		Target: target,
	})
}

// Build compiles the builder into a Form. Every edge must point at a declared node.
func (b *Builder) Build() (*domain.Form, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("form %s: %w", b.id, ErrEmptyForm)
	}

	nodes := make([]domain.Node, 0, len(b.order))
	for _, nb := range b.order {
		nodes = append(nodes, nb.Build())
	}

	edges := make([]domain.Edge, len(b.edges))
	copy(edges, b.edges)
	for _, e := range edges {
		if _, ok := b.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge %s from %s: target %q: %w", e.ID, e.Source, e.Target, domain.ErrNodeNotFound)
		}
	}

	return &domain.Form{
		ID:          b.id,
		Title:       b.title,
		Description: b.description,
		Schema:      domain.Schema{Nodes: nodes, Edges: edges},
	}, nil
}

// BuildRepository compiles the form into an in-memory repository holding only it.
func (b *Builder) BuildRepository() (*memory.Repository, error) {
	form, err := b.Build()
	if err != nil {
		return nil, err
	}
	repo, err := memory.NewRepository(form)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory repository: %w", err)
	}
	return repo, nil
}
