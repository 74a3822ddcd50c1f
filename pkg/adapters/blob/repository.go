// Package blob stores form documents in a gocloud.dev bucket, one JSON object per form.
// Any bucket URL registered with gocloud.dev/blob works (mem://, file://, s3://, gs://).
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

const extension = ".json"

// Repository implements ports.SchemaRepository over a blob bucket.
type Repository struct {
	bucket *blob.Bucket
	prefix string
}

// Option configures the Repository.
type Option func(*Repository)

// WithPrefix places form documents under a key prefix, e.g. "forms/".
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// Open opens the bucket at bucketURL.
func Open(ctx context.Context, bucketURL string, opts ...Option) (*Repository, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return New(bucket, opts...), nil
}

// New wraps an already opened bucket. The Repository takes ownership of it.
func New(bucket *blob.Bucket, opts ...Option) *Repository {
	r := &Repository{bucket: bucket}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads and decodes a form document.
func (r *Repository) Load(ctx context.Context, formID string) (*domain.Form, error) {
	data, err := r.bucket.ReadAll(ctx, r.keyFor(formID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
		}
		return nil, fmt.Errorf("read form %s: %w", formID, err)
	}

	var form domain.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("decode form %s: %w", formID, err)
	}
	if form.ID == "" {
		form.ID = formID
	}
	return &form, nil
}

// Save writes a form document, replacing any previous version.
func (r *Repository) Save(ctx context.Context, form *domain.Form) error {
	if form == nil || form.ID == "" {
		return errors.New("form missing ID")
	}
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode form %s: %w", form.ID, err)
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := r.bucket.WriteAll(ctx, r.keyFor(form.ID), data, opts); err != nil {
		return fmt.Errorf("write form %s: %w", form.ID, err)
	}
	return nil
}

// Delete removes a form document.
func (r *Repository) Delete(ctx context.Context, formID string) error {
	err := r.bucket.Delete(ctx, r.keyFor(formID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("%s: %w", formID, domain.ErrFormNotFound)
		}
		return fmt.Errorf("delete form %s: %w", formID, err)
	}
	return nil
}

// List returns the ids of all form documents under the prefix.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	iter := r.bucket.List(&blob.ListOptions{Prefix: r.prefix})
	var ids []string
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list forms: %w", err)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, extension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(obj.Key, r.prefix), extension))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases the bucket.
func (r *Repository) Close() error {
	return r.bucket.Close()
}

func (r *Repository) keyFor(formID string) string {
	return r.prefix + formID + extension
}
