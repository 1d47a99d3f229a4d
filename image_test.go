package gatewaysmoke_test

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	gatewaysmoke "github.com/juburr/gateway-smoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImage(t *testing.T) {
	t.Run("Fixture", func(t *testing.T) {
		img, err := gatewaysmoke.LoadImage(testImagePath)
		require.NoError(t, err)

		raw, err := os.ReadFile(testImagePath)
		require.NoError(t, err)

		assert.Equal(t, testImagePath, img.Path)
		assert.Equal(t, raw, img.Data)
		assert.Equal(t, "image/jpeg", img.ContentType)
	})

	t.Run("Base64RoundTrip", func(t *testing.T) {
		img, err := gatewaysmoke.LoadImage(testImagePath)
		require.NoError(t, err)

		decoded, err := base64.StdEncoding.DecodeString(img.Base64())
		require.NoError(t, err, "encoding must be standard padded base64")
		assert.Equal(t, img.Data, decoded)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := gatewaysmoke.LoadImage(filepath.Join(t.TempDir(), "nope.jpg"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gatewaysmoke.ErrImageUnreadable)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := gatewaysmoke.LoadImage(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, gatewaysmoke.ErrImageUnreadable)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.jpg")
		writeFile(t, path, nil)

		_, err := gatewaysmoke.LoadImage(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, gatewaysmoke.ErrImageUnreadable)
		assert.Contains(t, err.Error(), "is empty")
	})

	t.Run("NotAnImage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		writeFile(t, path, []byte("plain text, no pixels"))

		_, err := gatewaysmoke.LoadImage(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, gatewaysmoke.ErrImageUnreadable)
		assert.Contains(t, err.Error(), "does not look like an image")
	})

	t.Run("SniffedWithoutExtension", func(t *testing.T) {
		raw, err := os.ReadFile(testImagePath)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "upload")
		writeFile(t, path, raw)

		img, err := gatewaysmoke.LoadImage(path)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.ContentType)
	})
}

func TestEncodeImageFile(t *testing.T) {
	encoded, err := gatewaysmoke.EncodeImageFile(testImagePath)
	require.NoError(t, err)

	raw, err := os.ReadFile(testImagePath)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), encoded)

	_, err = gatewaysmoke.EncodeImageFile("testdata/does-not-exist.jpg")
	assert.ErrorIs(t, err, gatewaysmoke.ErrImageUnreadable)
}

func TestResolveImagePath(t *testing.T) {
	base := filepath.Join("repo", "temp")

	tests := []struct {
		name     string
		baseDir  string
		rel      string
		expected string
	}{
		{"ForwardSlashes", base, "../files/images/2birds.jpg", filepath.Join("repo", "files", "images", "2birds.jpg")},
		{"Backslashes", base, `\..\files\images\2birds.jpg`, filepath.Join("repo", "files", "images", "2birds.jpg")},
		{"NoBase", "", "testdata/2birds.jpg", filepath.Join("testdata", "2birds.jpg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gatewaysmoke.ResolveImagePath(tt.baseDir, tt.rel))
		})
	}

	t.Run("AbsoluteWins", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "x.jpg")
		assert.Equal(t, abs, gatewaysmoke.ResolveImagePath(base, abs))
	})
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"2birds.jpg":      true,
		"2birds.JPEG":     true,
		"logo.png":        true,
		"anim.webp":       true,
		"notes.txt":       false,
		"noextension":     false,
		"archive.jpg.zip": false,
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, gatewaysmoke.IsImageFile(name))
		})
	}
}
