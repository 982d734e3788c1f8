package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"usersettings/internal/app/notify"
	"usersettings/internal/pkg/auth/jwt"
	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
	"usersettings/internal/pkg/resp"
)

// HandleSettingsStream upgrades the request to a WebSocket that receives the caller's
// settings changes. Browsers cannot set headers on WebSocket handshakes, so the token
// is also accepted in the "token" query parameter.
func HandleSettingsStream(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			tokenString = jwt.BearerToken(r)
		}

		if tokenString == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("Settings stream rejected: invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		conn := notify.NewConn(deps.Hub, ws, payload.ID)
		if err := deps.Hub.Register(conn); err != nil {
			if errors.Is(err, notify.ErrHubClosed) {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			}
			_ = ws.Close()
			return
		}

		logx.Info("Settings stream connected", "user_id", payload.ID)

		go conn.WritePump()
		conn.ReadPump()
	}
}
