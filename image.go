package gatewaysmoke

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultImagePath is the vision smoke test image, relative to the directory
// the tests run from.
const DefaultImagePath = "testdata/2birds.jpg"

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}

// Image is an image file loaded for a vision request.
type Image struct {
	Path        string
	Data        []byte
	ContentType string
}

// LoadImage reads the file at path. The error wraps ErrImageUnreadable when the
// file is missing, empty, a directory, or neither named nor sniffed as an image.
func LoadImage(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrImageUnreadable, err)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("%w: %s is a directory", ErrImageUnreadable, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrImageUnreadable, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: %s is empty", ErrImageUnreadable, path)
	}

	contentType := http.DetectContentType(data)
	if !IsImageFile(path) && !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: %s does not look like an image (%s)", ErrImageUnreadable, path, contentType)
	}

	return Image{
		Path:        path,
		Data:        data,
		ContentType: contentType,
	}, nil
}

// Base64 returns the standard, padded base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// EncodeImageFile loads path and returns its base64 encoding in one pass.
func EncodeImageFile(path string) (string, error) {
	img, err := LoadImage(path)
	if err != nil {
		return "", err
	}
	return img.Base64(), nil
}

// ResolveImagePath joins rel onto baseDir unless rel is already absolute.
// Windows-style paths such as `\..\files\2birds.jpg` are always taken as
// relative to baseDir, leading separator included.
func ResolveImagePath(baseDir, rel string) string {
	if strings.Contains(rel, `\`) {
		rel = strings.TrimLeft(strings.ReplaceAll(rel, `\`, "/"), "/")
	}
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) || baseDir == "" {
		return filepath.Clean(rel)
	}
	return filepath.Join(baseDir, rel)
}

// IsImageFile reports whether filename has a known image extension.
func IsImageFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, imgExt := range imageExtensions {
		if ext == imgExt {
			return true
		}
	}
	return false
}
