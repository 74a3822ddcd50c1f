// Package sqlite stores form documents in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/formflow/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Repository implements ports.SchemaRepository on SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Load returns the stored form.
func (r *Repository) Load(ctx context.Context, formID string) (*domain.Form, error) {
	var (
		form   = domain.Form{ID: formID}
		schema string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT title, description, schema FROM forms WHERE id = ?`, formID,
	).Scan(&form.Title, &form.Description, &schema)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
		}
		return nil, fmt.Errorf("query form %s: %w", formID, err)
	}
	if err := json.Unmarshal([]byte(schema), &form.Schema); err != nil {
		return nil, fmt.Errorf("decode schema of form %s: %w", formID, err)
	}
	return &form, nil
}

// Save inserts or replaces a form.
func (r *Repository) Save(ctx context.Context, form *domain.Form) error {
	if form == nil || form.ID == "" {
		return errors.New("form missing ID")
	}
	schema, err := json.Marshal(form.Schema)
	if err != nil {
		return fmt.Errorf("encode schema of form %s: %w", form.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forms (id, title, description, schema, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			schema = excluded.schema,
			updated_at = excluded.updated_at`,
		form.ID, form.Title, form.Description, string(schema), r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save form %s: %w", form.ID, err)
	}
	return nil
}

// Delete removes a form.
func (r *Repository) Delete(ctx context.Context, formID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, formID)
	if err != nil {
		return fmt.Errorf("delete form %s: %w", formID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete form %s: %w", formID, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
	}
	return nil
}

// List returns all form ids in order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM forms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan form id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
