package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/formflow/pkg/domain"
)

// Repository implements ports.SchemaRepository using an in-memory map.
// Forms are kept serialized so callers never share mutable state with the store.
type Repository struct {
	mu    sync.RWMutex
	forms map[string][]byte
}

// NewRepository creates a Repository seeded with the given forms.
func NewRepository(forms ...*domain.Form) (*Repository, error) {
	r := &Repository{forms: make(map[string][]byte)}
	for _, f := range forms {
		if err := r.Save(context.Background(), f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewRepositoryFromJSON creates a Repository from raw form documents keyed by id.
// This mirrors what the editor persists, which is convenient in tests.
func NewRepositoryFromJSON(docs map[string]string) (*Repository, error) {
	r := &Repository{forms: make(map[string][]byte)}
	for id, doc := range docs {
		var f domain.Form
		if err := json.Unmarshal([]byte(doc), &f); err != nil {
			return nil, fmt.Errorf("failed to parse form %s: %w", id, err)
		}
		if f.ID == "" {
			f.ID = id
		}
		if err := r.Save(context.Background(), &f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load returns a fresh copy of the form.
func (r *Repository) Load(ctx context.Context, formID string) (*domain.Form, error) {
	r.mu.RLock()
	raw, ok := r.forms[formID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
	}

	var f domain.Form
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode form %s: %w", formID, err)
	}
	return &f, nil
}

// Save stores a copy of form.
func (r *Repository) Save(ctx context.Context, form *domain.Form) error {
	if form == nil || form.ID == "" {
		return fmt.Errorf("form missing ID")
	}
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to marshal form %s: %w", form.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[form.ID] = raw
	return nil
}

// Delete removes a form.
func (r *Repository) Delete(ctx context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[formID]; !ok {
		return fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
	}
	delete(r.forms, formID)
	return nil
}

// List returns all form ids.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}
