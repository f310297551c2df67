package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), repo.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "22P02"}), repo.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}), repo.ErrDuplicate)

	var ce *repo.ConstraintError
	require.ErrorAs(t, mapError(&pgconn.PgError{Code: "23514", ConstraintName: "listings_price_range"}), &ce)
	assert.Equal(t, []string{"Price must be between 0 and 1,000,000"}, ce.Messages)

	require.ErrorAs(t, mapError(&pgconn.PgError{Code: "23514", ConstraintName: "unknown", Message: "new row violates"}), &ce)
	assert.Equal(t, []string{"new row violates"}, ce.Messages)

	err := mapError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, repo.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("6f1c1c2e-3b7a-4a8e-9a6c-0c3b1f9e2d11"))
	assert.False(t, validID("not-a-uuid"))
	assert.False(t, validID(""))
}
