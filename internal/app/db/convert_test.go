package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbc "usersettings/internal/app/db/sqlc"
)

func TestDate(t *testing.T) {
	assert.False(t, Date("").Valid)
	assert.False(t, Date("10/12/1815").Valid)

	d := Date("1815-12-10")
	require.True(t, d.Valid)
	assert.Equal(t, time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC), d.Time)
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := ParseUUID(id.String())
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, [16]byte(id), got.Bytes)

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}

func TestToAccount(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	a := ToAccount(dbc.User{
		ID:           UUID(id),
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Name:         "Ada",
		DateOfBirth:  Date("1815-12-10"),
		AvatarKey:    "avatars/k.png",
		CreatedAt:    pgtype.Timestamptz{Time: created, Valid: true},
	})

	assert.Equal(t, id, a.ID)
	assert.Equal(t, "1815-12-10", a.DateOfBirth)
	assert.Equal(t, "avatars/k.png", a.AvatarKey)
	assert.Equal(t, created, a.CreatedAt)

	assert.Empty(t, ToAccount(dbc.User{}).DateOfBirth)
}

func TestErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create user: %w", unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))

	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(unique))
}
