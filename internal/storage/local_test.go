package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	st, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestLocalStorageRoundTrip(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()

	n, err := st.Save(ctx, "exports/abc.pdf", bytes.NewReader([]byte("%PDF test")))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	exists, err := st.Exists(ctx, "exports/abc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := st.Open(ctx, "exports/abc.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF test", string(data))

	require.NoError(t, st.Delete(ctx, "exports/abc.pdf"))
	exists, err = st.Exists(ctx, "exports/abc.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageOpenMissing(t *testing.T) {
	st := newLocal(t)

	_, err := st.Open(context.Background(), "exports/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageDeleteMissing(t *testing.T) {
	st := newLocal(t)

	// Deleting an absent key is not an error; the purge relies on that.
	assert.NoError(t, st.Delete(context.Background(), "exports/missing.pdf"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "exports/../../etc/passwd", "/abs/path", "."} {
		t.Run(key, func(t *testing.T) {
			_, err := st.Save(ctx, key, bytes.NewReader([]byte("x")))
			assert.Error(t, err)
		})
	}
}

func TestLocalStorageOverwrite(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()

	_, err := st.Save(ctx, "exports/abc.json", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	_, err = st.Save(ctx, "exports/abc.json", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	rc, err := st.Open(ctx, "exports/abc.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
