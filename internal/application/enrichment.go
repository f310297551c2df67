package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
)

const (
	cloudinaryHost       = "res.cloudinary.com"
	displayTransform     = "w_800,h_600,c_fill"
	thumbnailTransform   = "w_300,h_200,c_fill"
	ThumbnailPlaceholder = "https://placehold.co/300x200?text=No+Image"
	LocalImagePrefix     = "/uploads/"
)

// Resolver enriches listings with coordinates and display-ready image URLs.
// Geometry never fails: any geocoding problem degrades to the [0,0] point.
type Resolver struct {
	Geocoder gateway.Geocoder // nil disables geocoding
	Images   gateway.ImageStore
	Events   gateway.EventPublisher
	Metrics  *metrics.Recorder
	Logger   *logrus.Logger
}

func NewResolver(geocoder gateway.Geocoder, images gateway.ImageStore, events gateway.EventPublisher, m *metrics.Recorder, logger *logrus.Logger) *Resolver {
	return &Resolver{Geocoder: geocoder, Images: images, Events: events, Metrics: m, Logger: logger}
}

func (r *Resolver) Geometry(ctx context.Context, location string) entity.Geometry {
	if r.Geocoder == nil {
		r.Metrics.Degraded("geocode_disabled")
		if r.Logger != nil {
			r.Logger.WithField("location", location).Debug("geocoding disabled, using fallback point")
		}
		return entity.FallbackGeometry()
	}
	points, err := r.Geocoder.ForwardGeocode(ctx, location, 1)
	if err == nil && len(points) == 0 {
		err = gateway.ErrNoResults
	}
	if err != nil {
		reason := "geocode_failed"
		if errors.Is(err, gateway.ErrNoResults) {
			reason = "geocode_no_results"
		}
		r.Metrics.Degraded(reason)
		if r.Logger != nil {
			degraded := apperr.Wrap(apperr.ExternalServiceDegraded, reason, err)
			r.Logger.WithError(degraded).WithFields(logrus.Fields{
				"kind":     degraded.Kind.String(),
				"location": location,
			}).Warn("geocoding degraded, using fallback point")
		}
		publish(ctx, r.Events, r.Logger, gateway.Event{Type: gateway.EventGeocodeDegraded, Reason: reason + ": " + location})
		return entity.FallbackGeometry()
	}
	g := points[0]
	g.Type = entity.GeometryPoint
	return g
}

// StoreImage uploads the file and returns the normalized image value.
func (r *Resolver) StoreImage(ctx context.Context, u *gateway.Upload) (entity.Image, error) {
	if r.Images == nil {
		return entity.Image{}, errors.New("no image store configured")
	}
	stored, err := r.Images.Upload(ctx, u)
	if err != nil {
		return entity.Image{}, err
	}
	return NormalizeImage(stored, r.Images.Name()), nil
}

// NormalizeImage turns a raw storage result into the display URL: Cloudinary
// URLs get a fixed crop, local files are served from /uploads, anything else
// is used as-is.
func NormalizeImage(stored gateway.StoredImage, backend string) entity.Image {
	img := entity.Image{URL: stored.Path, Filename: stored.Filename}
	switch {
	case backend == "local":
		img.URL = LocalImagePrefix + stored.Filename
	case isCloudinaryURL(stored.Path):
		img.URL = strings.Replace(stored.Path, "/upload/", "/upload/"+displayTransform+"/", 1)
	}
	return img
}

// ThumbnailURL is the preview shown on the edit form.
func ThumbnailURL(img entity.Image) string {
	if img.URL == "" {
		return ThumbnailPlaceholder
	}
	if !isCloudinaryURL(img.URL) {
		return img.URL
	}
	return strings.Replace(img.URL, "/upload", "/upload/"+thumbnailTransform, 1)
}

func isCloudinaryURL(u string) bool {
	return strings.Contains(u, cloudinaryHost) && strings.Contains(u, "/upload/")
}
