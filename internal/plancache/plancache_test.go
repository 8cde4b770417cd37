package plancache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	plan := []byte(`{"id":"p1"}`)
	require.NoError(t, m.Put(ctx, "p1", plan, time.Minute))

	plan[0] = 'X'
	got, err := m.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"p1"}`, string(got))

	require.NoError(t, m.Delete(ctx, "p1"))
	_, err = m.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, m.Delete(ctx, "never-stored"))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, m.Put(ctx, "forever", []byte("b"), 0))
	assert.Equal(t, 2, m.Len())

	now = now.Add(time.Minute)

	_, err := m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := m.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ImplementsCache(t *testing.T) {
	var _ Cache = NewMemory()
	var _ Cache = (*Redis)(nil)
}
