package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

// ReadForm decodes a form document from path ("-" reads stdin).
// A document without an id takes the file name without extension.
func ReadForm(path string, stdin io.Reader) (*domain.Form, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read form %s: %w", path, err)
	}

	var form domain.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("failed to parse form %s: %w", path, err)
	}
	if form.ID == "" && path != "-" {
		form.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if form.ID == "" {
		return nil, fmt.Errorf("form %s has no id", path)
	}
	return &form, nil
}

// ImportDir saves every *.json form found directly in dir and returns their ids.
func ImportDir(ctx context.Context, repo ports.SchemaRepository, dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		form, err := ReadForm(p, nil)
		if err != nil {
			return ids, err
		}
		if err := repo.Save(ctx, form); err != nil {
			return ids, fmt.Errorf("failed to save form %s: %w", form.ID, err)
		}
		ids = append(ids, form.ID)
	}
	return ids, nil
}
