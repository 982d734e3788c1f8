package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/user"
)

// UUID converts id to its pgtype form.
func UUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// ParseUUID parses a textual user ID, as carried in tokens.
func ParseUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return UUID(id), nil
}

// Date converts a YYYY-MM-DD string to a nullable DATE. "" is NULL.
// The caller validates the format; an unparsable value is stored as NULL.
func Date(s string) pgtype.Date {
	if s == "" {
		return pgtype.Date{}
	}

	t, err := time.Parse(user.DateOfBirthLayout, s)
	if err != nil {
		return pgtype.Date{}
	}

	return pgtype.Date{Time: t, Valid: true}
}

// ToAccount maps a users row to the domain Account.
func ToAccount(u dbc.User) user.Account {
	a := user.Account{
		ID:           uuid.UUID(u.ID.Bytes),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Lastname:     u.Lastname,
		Profession:   u.Profession,
		AvatarKey:    u.AvatarKey,
		CreatedAt:    u.CreatedAt.Time,
		UpdatedAt:    u.UpdatedAt.Time,
	}

	if u.DateOfBirth.Valid {
		a.DateOfBirth = u.DateOfBirth.Time.Format(user.DateOfBirthLayout)
	}

	return a
}
