package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
)

// constraintMessages turns named CHECK/FK constraints into readable messages.
var constraintMessages = map[string]string{
	"listings_title_length":       "Title must be between 1 and 100 characters",
	"listings_description_length": "Description cannot exceed 1000 characters",
	"listings_price_range":        "Price must be between 0 and 1,000,000",
	"listings_location_length":    "Location must be between 1 and 200 characters",
	"listings_country_length":     "Country must be between 1 and 100 characters",
	"listings_geometry_point":     "Geometry must be a Point",
	"listings_owner_id_fkey":      "Owner does not exist",
	"reviews_comment_length":      "Comment must be between 1 and 500 characters",
	"reviews_rating_range":        "Rating must be between 1 and 5",
	"reviews_author_id_fkey":      "Author does not exist",
}

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repo.ErrDuplicate, pgErr.ConstraintName)
		case "23502", "23503", "23514":
			msg, ok := constraintMessages[pgErr.ConstraintName]
			if !ok {
				msg = pgErr.Message
			}
			return &repo.ConstraintError{Messages: []string{msg}}
		case "22P02":
			// invalid_text_representation: a malformed id can never match
			return repo.ErrNotFound
		}
	}
	return fmt.Errorf("%w: %v", repo.ErrStoreUnavailable, err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
