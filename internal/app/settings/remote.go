package settings

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Endpoints of the settings service.
const (
	PathSettings = "/api/user/settings"
	PathUpdate   = "/api/user/update"
	PathAvatar   = "/api/user/avatar"
)

// AvatarFormField is the multipart field carrying the avatar file.
const AvatarFormField = "avatar"

// AvatarFile is the binary payload of an avatar upload.
type AvatarFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoadAvatarFile reads the file at path and derives its content type from the
// extension, falling back to content sniffing.
func LoadAvatarFile(path string) (AvatarFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AvatarFile{}, fmt.Errorf("read avatar file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return AvatarFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Request is one call to the settings service.
// Body is encoded as JSON; File, when set, is sent as a multipart upload instead.
type Request struct {
	Method string
	Path   string
	Body   any
	File   *AvatarFile
}

// RemoteClient is the transport the Store talks through.
// Do sends req and decodes the response payload into out (which may be nil).
type RemoteClient interface {
	Do(ctx context.Context, req Request, out any) error
}

// AvatarResponse is the payload returned by the avatar upload endpoint.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}
