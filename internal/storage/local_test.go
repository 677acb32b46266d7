package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := "fake image bytes"
	require.NoError(t, s.Upload(ctx, "alice_profile.png", strings.NewReader(data), int64(len(data)), "image/png"))

	rc, err := s.Download(ctx, "alice_profile.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, data, string(got))

	_, err = s.Download(ctx, "missing_profile.png")
	require.Error(t, err)
}

func TestLocalStorageStripsPathComponents(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "../../etc/alice_profile.png", strings.NewReader("x"), 1, "image/png"))

	// stored under its base name only
	rc, err := s.Download(ctx, "alice_profile.png")
	require.NoError(t, err)
	rc.Close()
}
