/*
Package handler provides the HTTP handlers and routing of the settings service.
*/
package handler

import (
	"net/http"
	"strings"

	"usersettings/internal/app/db"
	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/settings"
	"usersettings/internal/app/user"
	"usersettings/internal/pkg/auth/jwt"
	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
	"usersettings/internal/pkg/req"
	"usersettings/internal/pkg/resp"
)

// CredentialsInput is the body of register and login requests.
type CredentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token    string                `json:"token"`
	Settings settings.UserSettings `json:"settings"`
}

// HandleRegister creates an account from an email and password and signs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if !user.ValidEmail(email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if customErr := user.ValidatePassword(input.Password); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		hashedPassword, err := user.HashPassword(input.Password)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		created, err := deps.DB.CreateUser(r.Context(), dbc.CreateUserParams{
			Email:        email,
			PasswordHash: hashedPassword,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: email already exists", "email", email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		respondSession(w, r, deps, db.ToAccount(created))
	}
}

// HandleLogin verifies an email and password and issues a session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		dbUser, err := deps.DB.GetUserByEmail(r.Context(), email)
		if err != nil {
			if !db.IsNotFound(err) {
				logx.Error(err, "login: user fetch failed", "email", email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			logx.Warn("login: unknown email", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !user.CheckPassword(dbUser.PasswordHash, input.Password) {
			logx.Warn("login: password mismatch", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		respondSession(w, r, deps, db.ToAccount(dbUser))
	}
}

func respondSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, account user.Account) {
	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:    account.ID.String(),
		Email: account.Email,
	}, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "jwt generation failed", "user_id", account.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	current, err := deps.userSettings(r.Context(), account)
	if err != nil {
		logx.Error(err, "failed to resolve avatar URL", "user_id", account.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
		return
	}

	resp.RespondSuccess(w, r, SessionResponse{
		Token:    token,
		Settings: current,
	})
}
