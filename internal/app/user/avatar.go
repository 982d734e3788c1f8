package user

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"usersettings/internal/pkg/errs"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	avatarKeyPrefix = "avatars"
)

// AllowedAvatarTypes defines the set of permitted avatar MIME types.
var AllowedAvatarTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateAvatarSize checks that size is positive and within MaxAvatarSize.
func ValidateAvatarSize(size int64) *errs.CustomError {
	if size <= 0 {
		return errs.NewError(errs.ErrAvatarMissing)
	}

	if size > MaxAvatarSize {
		return errs.NewError(errs.ErrFileSizeTooLarge, MaxAvatarSizeMB)
	}

	return nil
}

// ValidateAvatarType checks that mimeType is allowed and agrees with the extension of fileName.
// It returns the normalized MIME type.
func ValidateAvatarType(fileName string, mimeType string) (string, *errs.CustomError) {
	lowerMimeType := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(lowerMimeType, ";"); i >= 0 {
		lowerMimeType = strings.TrimSpace(lowerMimeType[:i])
	}

	if _, ok := AllowedAvatarTypes[lowerMimeType]; !ok {
		return "", errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[strings.ToLower(filepath.Ext(fileName))]
	if !ok || expectedMIME != lowerMimeType {
		return "", errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	return lowerMimeType, nil
}

// AvatarKey builds a fresh object key for an avatar of userID.
// Every upload gets a new key so cached URLs of the previous avatar never serve the new image.
func AvatarKey(userID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%s%s", avatarKeyPrefix, userID, uuid.New(), ext)
}
