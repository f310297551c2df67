package validation

import "strings"

// ListingSubmission is a listing form exactly as posted.
type ListingSubmission struct {
	Title       string `form:"listing[title]"`
	Description string `form:"listing[description]"`
	Price       string `form:"listing[price]"`
	Location    string `form:"listing[location]"`
	Country     string `form:"listing[country]"`
	Image       string `form:"listing[image]"`
}

// ListingInput is a validated, normalized listing submission.
type ListingInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Country     string
	Image       string
}

type listingRecord struct {
	Title       string   `validate:"required,max=100,headline"`
	Description string   `validate:"max=1000,paragraph"`
	Price       *float64 `validate:"required,min=0,max=1000000"`
	Location    string   `validate:"required,max=200,place"`
	Country     string   `validate:"required,max=100,place"`
}

var listingOrder = []string{"Title", "Description", "Price", "Location", "Country"}

var listingMessages = fieldMessages{
	"Title.required":        "Title is required",
	"Title.max":             "Title cannot exceed 100 characters",
	"Title.headline":        "Title contains invalid characters",
	"Description.max":       "Description cannot exceed 1000 characters",
	"Description.paragraph": "Description contains invalid characters",
	"Price.required":        "Price is required",
	"Price.min":             "Price must be at least 0",
	"Price.max":             "Price cannot exceed 1,000,000",
	"Location.required":     "Location is required",
	"Location.max":          "Location cannot exceed 200 characters",
	"Location.place":        "Location contains invalid characters",
	"Country.required":      "Country is required",
	"Country.max":           "Country cannot exceed 100 characters",
	"Country.place":         "Country contains invalid characters",
}

// ValidateListing trims and checks a listing submission. The returned input
// is only meaningful when the result is valid.
func ValidateListing(sub ListingSubmission) (ListingInput, Result) {
	rec := listingRecord{
		Title:       strings.TrimSpace(sub.Title),
		Description: strings.TrimSpace(sub.Description),
		Location:    strings.TrimSpace(sub.Location),
		Country:     strings.TrimSpace(sub.Country),
	}
	extra := map[string]string{}
	if price, present, ok := parseNumber(sub.Price); ok {
		rec.Price = &price
	} else if present {
		extra["Price"] = "Price must be a number"
	}

	res := collect(engine.Struct(rec), listingOrder, listingMessages, extra)
	if !res.Valid() {
		return ListingInput{}, res
	}
	return ListingInput{
		Title:       rec.Title,
		Description: rec.Description,
		Price:       *rec.Price,
		Location:    rec.Location,
		Country:     rec.Country,
		Image:       strings.TrimSpace(sub.Image),
	}, res
}
