package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()

	c, err := NewBadgerCache(t.TempDir(), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestBadgerCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("movie:1", []byte(`{"id":1}`)))

	value, err := c.Get("movie:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), value)
	assert.True(t, c.Has("movie:1"))
}

func TestBadgerCache_MissingKey(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get("absent")
	assert.ErrorIs(t, err, ErrMiss)
	assert.False(t, c.Has("absent"))
}

func TestBadgerCache_Forget(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("movie:1", []byte("x")))
	require.NoError(t, c.Forget("movie:1"))

	assert.False(t, c.Has("movie:1"))
}

func TestBadgerCache_ForgetByMatch(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("movie:1", []byte("a")))
	require.NoError(t, c.Set("movie:2", []byte("b")))
	require.NoError(t, c.Set("genre:1", []byte("c")))

	require.NoError(t, c.ForgetByMatch("movie:*"))

	assert.False(t, c.Has("movie:1"))
	assert.False(t, c.Has("movie:2"))
	assert.True(t, c.Has("genre:1"))
}

func TestBadgerCache_Flush(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("movie:1", []byte("a")))
	require.NoError(t, c.Flush())

	assert.False(t, c.Has("movie:1"))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}

	require.NoError(t, c.Set("k", []byte("v")))
	_, err := c.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.False(t, c.Has("k"))
}
