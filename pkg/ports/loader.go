package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
)

// SchemaLoader defines how the engine retrieves form schemas.
type SchemaLoader interface {
	// Load returns the form for the given identifier.
	// Returns domain.ErrFormNotFound if no such form exists.
	Load(ctx context.Context, formID string) (*domain.Form, error)
}

// SchemaRepository is a SchemaLoader that also manages the stored forms.
type SchemaRepository interface {
	SchemaLoader

	// Save creates or replaces a form.
	Save(ctx context.Context, form *domain.Form) error

	// Delete removes a form. Returns domain.ErrFormNotFound if it does not exist.
	Delete(ctx context.Context, formID string) error

	// List returns the identifiers of all stored forms, sorted.
	List(ctx context.Context) ([]string, error)
}
