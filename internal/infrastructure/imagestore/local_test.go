package imagestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

func upload(name, body string) *gateway.Upload {
	return &gateway.Upload{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	got, err := store.Upload(context.Background(), upload("../../My Cabin.JPG", "jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.Filename, "-My_Cabin.JPG"), got.Filename)
	assert.Equal(t, filepath.Join(dir, "uploads", got.Filename), got.Path)

	b, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
}

func TestLocalUpload_RejectsFormat(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), upload("payload.svg", "<svg/>"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLocalUpload_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upload(ctx, upload("a.png", "png"))
	require.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "partial file removed")
}

func TestSafeBase(t *testing.T) {
	assert.Equal(t, "a_b.png", safeBase("a b.png"))
	assert.Equal(t, "passwd", safeBase("/etc/passwd"))
	assert.Equal(t, "x.png", safeBase(`C:\tmp\x.png`))
	assert.Equal(t, "image", safeBase("..."))
}
