package runtime_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/stretchr/testify/require"
)

const testIcon = "https://example.com/icon.png"

func loadContactForm(t *testing.T) *domain.Form {
	t.Helper()
	raw, err := os.ReadFile("testdata/contact.json")
	require.NoError(t, err)

	var form domain.Form
	require.NoError(t, json.Unmarshal(raw, &form))
	return &form
}

func parseSchema(t *testing.T, raw string) *domain.Schema {
	t.Helper()
	var s domain.Schema
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return &s
}

// encode matches the wire encoding of the HTTP adapter.
func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	require.NoError(t, enc.Encode(v))
	return buf.Bytes()
}

func ptr(s string) *string { return &s }
