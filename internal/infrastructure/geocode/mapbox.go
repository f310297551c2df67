// Package geocode implements gateway.Geocoder on the Mapbox geocoding API.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

const maxBody = 1 << 20

// Mapbox is a forward geocoder for the v5 mapbox.places endpoint.
type Mapbox struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewMapbox(baseURL, token string, timeout time.Duration) *Mapbox {
	return &Mapbox{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (m *Mapbox) ForwardGeocode(ctx context.Context, query string, limit int) ([]entity.Geometry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, gateway.ErrNoResults
	}
	if limit <= 0 {
		limit = 1
	}
	q := url.Values{}
	q.Set("access_token", m.Token)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", m.BaseURL, url.PathEscape(query), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "message").String()
		return nil, fmt.Errorf("mapbox: status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("mapbox: invalid response body")
	}

	var out []entity.Geometry
	gjson.GetBytes(body, "features").ForEach(func(_, feature gjson.Result) bool {
		coords := feature.Get("geometry.coordinates").Array()
		if len(coords) < 2 {
			return true
		}
		out = append(out, entity.Geometry{
			Type:        entity.GeometryPoint,
			Coordinates: [2]float64{coords[0].Float(), coords[1].Float()},
		})
		return len(out) < limit
	})
	if len(out) == 0 {
		return nil, gateway.ErrNoResults
	}
	return out, nil
}

var _ gateway.Geocoder = (*Mapbox)(nil)
