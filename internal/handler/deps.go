package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"usersettings/internal/app/db"
	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/notify"
	"usersettings/internal/app/settings"
	"usersettings/internal/app/storage"
	"usersettings/internal/app/user"
	"usersettings/internal/configs"
	"usersettings/internal/pkg/auth/jwt"
	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/limiter"
	"usersettings/internal/pkg/logx"
)

const objectDeleteTimeout = 10 * time.Second

// AppDeps bundles everything the handlers need.
type AppDeps struct {
	Config         *configs.AppConfig
	DB             db.Store
	StorageService storage.StorageService
	Hub            *notify.Hub

	// AvatarLimiter throttles avatar uploads; AuthLimiter throttles register and login.
	// A nil limiter disables throttling of its routes.
	AvatarLimiter *limiter.RateLimiter
	AuthLimiter   *limiter.RateLimiter

	// background tracks fire-and-forget storage cleanups.
	background sync.WaitGroup
}

// Wait blocks until background storage cleanups have finished.
func (d *AppDeps) Wait() {
	d.background.Wait()
}

// userSettings renders a as UserSettings, resolving the avatar key to a URL.
func (d *AppDeps) userSettings(ctx context.Context, a user.Account) (settings.UserSettings, error) {
	avatarURL, err := d.StorageService.URL(ctx, a.AvatarKey)
	if err != nil {
		return settings.UserSettings{}, err
	}
	return a.Settings(avatarURL), nil
}

// publish pushes the new settings of a to every stream connection of its owner.
func (d *AppDeps) publish(a user.Account, s settings.UserSettings) {
	if d.Hub == nil {
		return
	}
	d.Hub.Publish(a.ID.String(), notify.NewSettingsEvent(s))
}

// deleteObjectAsync removes key from storage without blocking the response.
func (d *AppDeps) deleteObjectAsync(key string) {
	if key == "" {
		return
	}

	d.background.Add(1)
	go func() {
		defer d.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), objectDeleteTimeout)
		defer cancel()

		if err := d.StorageService.Delete(ctx, key); err != nil {
			logx.Error(err, "Failed to delete stale avatar object", "key", key)
		}
	}()
}

// identity returns the database ID of the authenticated caller.
func identity(r *http.Request) (pgtype.UUID, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return pgtype.UUID{}, errs.NewError(errs.ErrUnauthorized)
	}

	id, err := db.ParseUUID(payload.ID)
	if err != nil {
		logx.Warn("Token carries a malformed user ID", "id", payload.ID)
		return pgtype.UUID{}, errs.NewError(errs.ErrUnauthorized)
	}

	return id, nil
}

// loadAccount fetches the caller's account, mapping a missing row to ErrUserNotFound.
func loadAccount(ctx context.Context, q dbc.Querier, id pgtype.UUID) (user.Account, *errs.CustomError) {
	u, err := q.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return user.Account{}, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "Failed to load account", "user_id", id.String())
		return user.Account{}, errs.NewError(errs.ErrUnknown)
	}
	return db.ToAccount(u), nil
}

// asCustomError unwraps a *errs.CustomError returned through a transaction, or reports err as ErrUnknown.
func asCustomError(err error, msg string) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	logx.Error(err, msg)
	return errs.NewError(errs.ErrUnknown)
}
