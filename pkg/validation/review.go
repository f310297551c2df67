package validation

import (
	"math"
	"strings"
)

// ReviewSubmission is a review form exactly as posted.
type ReviewSubmission struct {
	Rating  string `form:"review[rating]"`
	Comment string `form:"review[comment]"`
}

// ReviewInput is a validated, normalized review submission.
type ReviewInput struct {
	Rating  int
	Comment string
}

type reviewRecord struct {
	Rating  *float64 `validate:"required,min=1,max=5"`
	Comment string   `validate:"required,max=500,paragraph"`
}

var reviewOrder = []string{"Rating", "Comment"}

var reviewMessages = fieldMessages{
	"Rating.required":   "Rating is required",
	"Rating.min":        "Rating must be at least 1",
	"Rating.max":        "Rating cannot exceed 5",
	"Comment.required":  "Comment is required",
	"Comment.max":       "Comment cannot exceed 500 characters",
	"Comment.paragraph": "Comment contains invalid characters",
}

// ValidateReview trims and checks a review submission.
func ValidateReview(sub ReviewSubmission) (ReviewInput, Result) {
	rec := reviewRecord{Comment: strings.TrimSpace(sub.Comment)}
	extra := map[string]string{}
	rating, present, ok := parseNumber(sub.Rating)
	switch {
	case ok:
		rec.Rating = &rating
	case present:
		extra["Rating"] = "Rating must be a number"
	}

	err := engine.Struct(rec)
	if rec.Rating != nil && rating >= 1 && rating <= 5 && rating != math.Trunc(rating) {
		extra["Rating"] = "Rating must be a whole number"
	}

	res := collect(err, reviewOrder, reviewMessages, extra)
	if !res.Valid() {
		return ReviewInput{}, res
	}
	return ReviewInput{Rating: int(rating), Comment: rec.Comment}, res
}
