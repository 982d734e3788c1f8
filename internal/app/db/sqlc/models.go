package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           pgtype.UUID        `json:"id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"password_hash"`
	Name         string             `json:"name"`
	Lastname     string             `json:"lastname"`
	DateOfBirth  pgtype.Date        `json:"date_of_birth"`
	Profession   string             `json:"profession"`
	AvatarKey    string             `json:"avatar_key"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}
