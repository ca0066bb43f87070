package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save(ctx, "facture.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "facture.pdf", info.Name)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.FileExists(t, s.LocalPath(info))

	data, err := os.ReadFile(s.LocalPath(info))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(ctx, info.ID))
	assert.NoFileExists(t, s.LocalPath(info))

	assert.ErrorIs(t, s.Delete(ctx, info.ID), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestLocalStorage_SanitizesNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save(context.Background(), `..\..\etc/pass?wd.pdf`, "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, info.Path, "/")
	assert.NotContains(t, info.Path, "..")
	assert.True(t, strings.HasSuffix(info.Path, "pass_wd.pdf"), info.Path)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := s.Save(ctx, name, "application/pdf", strings.NewReader(name))
		require.NoError(t, err)
	}

	files, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestLocalStorage_Sweep(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	old, err := s.Save(ctx, "old.pdf", "", strings.NewReader("old"))
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh, err := s.Save(ctx, "fresh.pdf", "", strings.NewReader("fresh"))
	require.NoError(t, err)

	removed, err := s.Sweep(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, s.LocalPath(old))
	assert.FileExists(t, s.LocalPath(fresh))
}

func TestLocalStorage_SweepToleratesMissingFile(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save(ctx, "gone.pdf", "", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(s.LocalPath(info)))

	removed, err := s.Sweep(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}
