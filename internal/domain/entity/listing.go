package entity

import (
	"slices"
	"time"
)

// GeometryPoint is the only geometry type listings carry.
const GeometryPoint = "Point"

// Geometry is a GeoJSON point; Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FallbackGeometry is used whenever a location cannot be geocoded.
func FallbackGeometry() Geometry {
	return Geometry{Type: GeometryPoint, Coordinates: [2]float64{0, 0}}
}

// Image is the display URL plus the storage key of an uploaded picture.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Listing is the aggregate root for a bookable property.
// Owner never changes after creation; Reviews holds review ids in
// insertion order without duplicates.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Image       Image     `json:"image"`
	Geometry    Geometry  `json:"geometry"`
	Owner       UserRef   `json:"owner"`
	Reviews     []string  `json:"reviews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasReview reports whether reviewID is referenced by the listing.
func (l *Listing) HasReview(reviewID string) bool {
	return slices.Contains(l.Reviews, reviewID)
}

// ListingPatch carries the mutable fields of a listing. Owner, geometry and
// reviews are deliberately absent.
type ListingPatch struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Country     string
}

// ListingDetail is a listing with owner and reviews (and their authors) populated.
type ListingDetail struct {
	Listing
	ReviewDocs []Review `json:"reviewDocs"`
}

// ListingPage is one page of the listing index.
type ListingPage struct {
	Listings    []Listing `json:"allListings"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	HasNextPage bool      `json:"hasNextPage"`
	HasPrevPage bool      `json:"hasPrevPage"`
}
