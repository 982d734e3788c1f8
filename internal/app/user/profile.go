package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"usersettings/internal/app/settings"
	"usersettings/internal/pkg/errs"
)

const (
	// MinPasswordLength and MaxPasswordLength bound new passwords.
	// bcrypt ignores input beyond 72 bytes, so the upper bound stays below it.
	MinPasswordLength = 6
	MaxPasswordLength = 50

	// DateOfBirthLayout is the accepted dateOfBirth format.
	DateOfBirthLayout = "2006-01-02"
)

// Profile is the validated, normalized non-credential part of an update.
type Profile struct {
	Name        string
	Lastname    string
	Email       string
	DateOfBirth string
	Profession  string
}

// ValidateProfile trims and checks the profile fields of s.
// The avatar field is not part of a profile update and is ignored.
func ValidateProfile(s settings.UserSettings) (Profile, *errs.CustomError) {
	p := Profile{
		Name:        strings.TrimSpace(s.Name),
		Lastname:    strings.TrimSpace(s.Lastname),
		Email:       strings.ToLower(strings.TrimSpace(s.Email)),
		DateOfBirth: strings.TrimSpace(s.DateOfBirth),
		Profession:  strings.TrimSpace(s.Profession),
	}

	if p.Email != "" && !ValidEmail(p.Email) {
		return Profile{}, errs.NewError(errs.ErrInvalidEmail)
	}

	if p.DateOfBirth != "" {
		dob, err := time.Parse(DateOfBirthLayout, p.DateOfBirth)
		if err != nil || dob.After(time.Now()) {
			return Profile{}, errs.NewError(errs.ErrInvalidDateOfBirth)
		}
	}

	return p, nil
}

// ValidEmail performs the minimal shape check used for account emails.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// ValidatePassword checks the length rules of a new password.
func ValidatePassword(password string) *errs.CustomError {
	if n := len(password); n < MinPasswordLength || n > MaxPasswordLength {
		return errs.NewError(errs.ErrInvalidPassword, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

// ValidatePasswordChange checks the credential fields of s against the stored hash.
// It returns changed == false when s requests no password change.
func ValidatePasswordChange(s settings.UserSettings, currentHash string) (changed bool, cErr *errs.CustomError) {
	if s.Password == "" {
		return false, nil
	}

	if s.OldPassword == "" || !CheckPassword(currentHash, s.OldPassword) {
		return false, errs.NewError(errs.ErrOldPasswordInvalid)
	}

	if s.ConfirmPassword != s.Password {
		return false, errs.NewError(errs.ErrPasswordMismatch)
	}

	if cErr := ValidatePassword(s.Password); cErr != nil {
		return false, cErr
	}

	return true, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
