package imagestore

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: "listings"}
}

func (g *GCS) Name() string { return "gcs" }

func (g *GCS) Upload(ctx context.Context, u *gateway.Upload) (gateway.StoredImage, error) {
	if err := checkFormat(u.Filename); err != nil {
		return gateway.StoredImage{}, err
	}
	file, err := u.Open()
	if err != nil {
		return gateway.StoredImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	objectPath := path.Join(g.prefix, uuid.NewString()+"."+extension(u.Filename))
	contentType := u.ContentType
	if contentType == "" {
		contentType = "image/" + extension(u.Filename)
	}
	url, err := helpers.UploadObject(ctx, g.client, g.bucket, objectPath, contentType, file)
	if err != nil {
		return gateway.StoredImage{}, fmt.Errorf("gcs upload: %w", err)
	}
	return gateway.StoredImage{Path: url, Filename: objectPath}, nil
}

var _ gateway.ImageStore = (*GCS)(nil)
