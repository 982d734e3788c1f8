package handler

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"usersettings/internal/app/db"
	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/settings"
	"usersettings/internal/app/user"
	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
	"usersettings/internal/pkg/req"
	"usersettings/internal/pkg/resp"
)

// HandleGetSettings returns the caller's settings.
func HandleGetSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, customErr := loadAccount(r.Context(), deps.DB, id)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		current, err := deps.userSettings(r.Context(), account)
		if err != nil {
			logx.Error(err, "get_settings: failed to resolve avatar URL", "user_id", account.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, current)
	}
}

// HandleUpdateSettings replaces the caller's profile fields and, when requested,
// changes the password. The avatar field of the body is ignored; avatars change
// only through HandleUploadAvatar. The response is the persisted settings.
func HandleUpdateSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input settings.UserSettings
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, customErr := user.ValidateProfile(input)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var updated user.Account
		err := deps.DB.ExecTx(r.Context(), func(q dbc.Querier) error {
			var txErr error
			updated, txErr = applyUpdate(r.Context(), q, id, profile, input)
			return txErr
		})
		if err != nil {
			resp.RespondError(w, r, asCustomError(err, "update_settings: transaction failed"))
			return
		}

		persisted, err := deps.userSettings(r.Context(), updated)
		if err != nil {
			logx.Error(err, "update_settings: failed to resolve avatar URL", "user_id", updated.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Settings updated", "user_id", updated.ID, "password_changed", input.Password != "")

		deps.publish(updated, persisted)
		resp.RespondSuccess(w, r, persisted)
	}
}

// applyUpdate runs inside the update transaction. Returned errors are *errs.CustomError
// for rule violations.
func applyUpdate(
	ctx context.Context,
	q dbc.Querier,
	id pgtype.UUID,
	profile user.Profile,
	input settings.UserSettings,
) (user.Account, error) {
	current, customErr := loadAccount(ctx, q, id)
	if customErr != nil {
		return user.Account{}, customErr
	}

	changed, customErr := user.ValidatePasswordChange(input, current.PasswordHash)
	if customErr != nil {
		return user.Account{}, customErr
	}

	// an empty email keeps the sign-in address
	email := profile.Email
	if email == "" {
		email = current.Email
	}

	row, err := q.UpdateUserProfile(ctx, dbc.UpdateUserProfileParams{
		ID:          id,
		Name:        profile.Name,
		Lastname:    profile.Lastname,
		Email:       email,
		DateOfBirth: db.Date(profile.DateOfBirth),
		Profession:  profile.Profession,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return user.Account{}, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return user.Account{}, err
	}

	if changed {
		hash, err := user.HashPassword(input.Password)
		if err != nil {
			return user.Account{}, err
		}

		if err := q.UpdateUserPassword(ctx, dbc.UpdateUserPasswordParams{ID: id, PasswordHash: hash}); err != nil {
			return user.Account{}, err
		}
	}

	return db.ToAccount(row), nil
}
