// Package gateway declares the external services the core talks to.
package gateway

import (
	"context"
	"errors"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
)

// ErrNoResults is returned by a Geocoder that answered but found nothing.
var ErrNoResults = errors.New("geocoder: no results")

// Geocoder resolves free-text locations to points, best match first.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string, limit int) ([]entity.Geometry, error)
}
