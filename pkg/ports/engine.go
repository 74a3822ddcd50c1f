package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

// FlowEngine is the interface used by adapters (HTTP, MCP) to drive forms.
type FlowEngine interface {
	// Handle processes one participant interaction.
	Handle(ctx context.Context, req domain.Request) (*domain.Response, error)

	// Complete returns the completion descriptor of a form.
	Complete(ctx context.Context, formID string) (*domain.Response, error)

	// Inspect returns the stored form for introspection.
	Inspect(ctx context.Context, formID string) (*domain.Form, error)
}
