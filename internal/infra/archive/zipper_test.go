package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%08d.jpg", i))
		require.NoError(t, os.WriteFile(p, []byte{byte(i), 0xff}, 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestCreateZip(t *testing.T) {
	frames := writeFrames(t, 3)
	out := filepath.Join(t.TempDir(), "frames.zip")

	require.NoError(t, NewZipCreator("frames").CreateZip(context.Background(), frames, out))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 3)
	assert.Equal(t, "frames/00000000.jpg", r.File[0].Name)
	assert.Equal(t, "frames/00000002.jpg", r.File[2].Name)

	rc, err := r.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0xff}, data)
}

func TestCreateZipWithoutPrefix(t *testing.T) {
	frames := writeFrames(t, 1)
	out := filepath.Join(t.TempDir(), "frames.zip")

	require.NoError(t, NewZipCreator("").CreateZip(context.Background(), frames, out))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "00000000.jpg", r.File[0].Name)
}

func TestCreateZipCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewZipCreator("frames").CreateZip(ctx, writeFrames(t, 2), filepath.Join(t.TempDir(), "frames.zip"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreateZipMissingFile(t *testing.T) {
	err := NewZipCreator("frames").CreateZip(context.Background(),
		[]string{filepath.Join(t.TempDir(), "gone.jpg")},
		filepath.Join(t.TempDir(), "frames.zip"))
	assert.Error(t, err)
}
