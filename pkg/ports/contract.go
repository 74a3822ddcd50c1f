package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	prefix := "contract:" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + ":set"
		require.NoError(t, store.Set(ctx, key, `{"currentNodeId":"q1"}`, time.Hour))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"currentNodeId":"q1"}`, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + ":overwrite"
		require.NoError(t, store.Set(ctx, key, "a", time.Hour))
		require.NoError(t, store.Set(ctx, key, "b", time.Hour))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "b", got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+":missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + ":delete"
		require.NoError(t, store.Set(ctx, key, "x", 0))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	if lister, ok := store.(KeyLister); ok {
		t.Run("Keys", func(t *testing.T) {
			k1, k2 := prefix+":list:1", prefix+":list:2"
			require.NoError(t, store.Set(ctx, k1, "1", time.Hour))
			require.NoError(t, store.Set(ctx, k2, "2", time.Hour))
			defer func() {
				_ = store.Delete(ctx, k1)
				_ = store.Delete(ctx, k2)
			}()

			keys, err := lister.Keys(ctx, prefix+":list:")
			require.NoError(t, err)
			assert.Equal(t, []string{k1, k2}, keys)
		})
	}
}

// RunSchemaRepositoryContract verifies that a SchemaRepository implementation
// stores forms faithfully, including editor fields it does not interpret.
func RunSchemaRepositoryContract(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()

	form := &domain.Form{ID: "contract-form", Title: "Contract", Description: "d"}
	require.NoError(t, json.Unmarshal([]byte(`{
		"nodes": [
			{"id": "start", "type": "start", "data": {"label": "Hi"}, "position": {"x": 1, "y": 2}},
			{"id": "pay", "type": "transaction", "data": {"amount": 3}},
			{"id": "done", "type": "end", "data": {"message": "Bye"}}
		],
		"edges": [
			{"id": "e1", "source": "start", "target": "pay", "condition": {"operator": "equals", "value": "y"}},
			{"id": "e2", "source": "pay", "target": "done"}
		]
	}`), &form.Schema))

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, form))

		loaded, err := repo.Load(ctx, form.ID)
		require.NoError(t, err)
		assert.Equal(t, form.ID, loaded.ID)
		assert.Equal(t, form.Title, loaded.Title)
		assert.Equal(t, form.Description, loaded.Description)

		want, _ := json.Marshal(form.Schema)
		got, err := json.Marshal(loaded.Schema)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := repo.Load(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrFormNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := &domain.Form{ID: "contract-other", Title: "Other"}
		require.NoError(t, repo.Save(ctx, other))
		defer func() { _ = repo.Delete(ctx, other.ID) }()

		ids, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, form.ID)
		assert.Contains(t, ids, other.ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, form.ID))

		_, err := repo.Load(ctx, form.ID)
		assert.ErrorIs(t, err, domain.ErrFormNotFound, "Load after Delete should return ErrFormNotFound")
		assert.ErrorIs(t, repo.Delete(ctx, form.ID), domain.ErrFormNotFound)
	})
}
