// Package imagestore implements gateway.ImageStore on Cloudinary, Google
// Cloud Storage and the local disk.
package imagestore

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnsupportedFormat rejects anything that is not a png or jpeg file.
var ErrUnsupportedFormat = errors.New("image format not allowed (png, jpg, jpeg)")

var allowedFormats = []string{"png", "jpg", "jpeg"}

func extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func checkFormat(filename string) error {
	if !slices.Contains(allowedFormats, extension(filename)) {
		return ErrUnsupportedFormat
	}
	return nil
}

// safeBase keeps letters, digits, dash, underscore and dot from a client file name.
func safeBase(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), ".")
	if s == "" {
		return "image"
	}
	return s
}
