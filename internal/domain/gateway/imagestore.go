package gateway

import (
	"context"
	"io"
)

// Upload describes a file received with a request. Open may be called once.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// StoredImage is what an ImageStore reports after a successful upload:
// Path is the raw storage URL or disk path, Filename the stable storage key.
type StoredImage struct {
	Path     string
	Filename string
}

// ImageStore persists uploaded images.
type ImageStore interface {
	Upload(ctx context.Context, u *Upload) (StoredImage, error)
	// Name identifies the backend in logs.
	Name() string
}
