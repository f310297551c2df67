package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

const listingImageField = "listing[image]"

// formUpload returns the file posted under field, or nil when the request
// carried none.
func formUpload(c *gin.Context, field string) (*gateway.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Size == 0 && fh.Filename == "" {
		return nil, nil
	}
	return &gateway.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}, nil
}
