/*
Package user contains the server-side account model and the rules applied to
profile updates, password changes and avatar uploads.

An Account is what the database stores; its Settings method renders the
UserSettings record exchanged with clients, which never carries credentials.
*/
package user

import (
	"time"

	"github.com/google/uuid"

	"usersettings/internal/app/settings"
)

// Account is a registered user and their profile.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string

	Name        string
	Lastname    string
	DateOfBirth string
	Profession  string

	// AvatarKey is the object key of the current avatar, "" when none was uploaded.
	AvatarKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings renders the account as UserSettings with avatarURL as the avatar reference.
func (a Account) Settings(avatarURL string) settings.UserSettings {
	return settings.UserSettings{
		Avatar:      avatarURL,
		Name:        a.Name,
		Lastname:    a.Lastname,
		Email:       a.Email,
		DateOfBirth: a.DateOfBirth,
		Profession:  a.Profession,
	}
}
