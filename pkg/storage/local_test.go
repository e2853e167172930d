package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLocalPutWritesBelowRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/files/", zerolog.Nop())
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "P-1001/report.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, "/files/P-1001/report.txt", ref)

	content, err := os.ReadFile(filepath.Join(dir, "P-1001", "report.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestLocalPutRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/files", zerolog.Nop())
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	require.Equal(t, "/files/etc/passwd", ref)
	_, statErr := os.Stat(filepath.Join(dir, "etc", "passwd"))
	require.NoError(t, statErr)
}

func TestLocalPutDoesNotOverwrite(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/files", zerolog.Nop())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "a.txt", strings.NewReader("two"))
	require.Error(t, err)
}
