package settings

import "errors"

var (
	// ErrFetch marks a failed settings read.
	ErrFetch = errors.New("settings fetch failed")
	// ErrSave marks a failed settings update.
	ErrSave = errors.New("settings save failed")
	// ErrUpload marks a failed avatar upload.
	ErrUpload = errors.New("avatar upload failed")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("settings store closed")
	// ErrEmptyAvatarURL is returned when the upload response carries no avatar reference.
	ErrEmptyAvatarURL = errors.New("upload response has empty avatarUrl")
)
