package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	data, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	require.NoError(t, store.Set(ctx, "k", []byte("v2")))

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
	assert.Equal(t, []string{"k"}, store.Keys())

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	data, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, store.Keys())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	data[1] = 'y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
