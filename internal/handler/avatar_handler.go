package handler

import (
	"io"
	"net/http"

	"usersettings/internal/app/db"
	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/settings"
	"usersettings/internal/app/user"
	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
	"usersettings/internal/pkg/req"
	"usersettings/internal/pkg/resp"
)

// sniffLen is how much of an upload http.DetectContentType inspects.
const sniffLen = 512

// HandleUploadAvatar stores a new avatar image for the caller and returns its URL.
// The previous avatar object is deleted in the background once the new key is persisted.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, customErr := req.FormFile(r, settings.AvatarFormField)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer file.Close()

		if customErr := user.ValidateAvatarSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType, customErr := user.ValidateAvatarType(header.Filename, header.Header.Get("Content-Type"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// the declared type must match the actual bytes
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(file, head)
		if err != nil && err != io.ErrUnexpectedEOF {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		if detected := http.DetectContentType(head[:n]); detected != mimeType {
			logx.Warn("Avatar content does not match its declared type", "declared", mimeType, "detected", detected)
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarTypeInvalid))
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		current, customErr := loadAccount(r.Context(), deps.DB, id)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := user.AvatarKey(current.ID, header.Filename)
		if err := deps.StorageService.Upload(r.Context(), key, mimeType, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		row, err := deps.DB.UpdateUserAvatar(r.Context(), dbc.UpdateUserAvatarParams{ID: id, AvatarKey: key})
		if err != nil {
			logx.Error(err, "upload_avatar: failed to persist avatar key", "user_id", current.ID)
			deps.deleteObjectAsync(key)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if current.AvatarKey != key {
			deps.deleteObjectAsync(current.AvatarKey)
		}

		updated := db.ToAccount(row)
		persisted, err := deps.userSettings(r.Context(), updated)
		if err != nil {
			logx.Error(err, "upload_avatar: failed to resolve avatar URL", "user_id", updated.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Avatar uploaded", "user_id", updated.ID, "key", key, "size", header.Size)

		deps.publish(updated, persisted)
		resp.RespondSuccess(w, r, settings.AvatarResponse{AvatarURL: persisted.Avatar})
	}
}
