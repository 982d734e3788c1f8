/*
Package resp provides helper functions for sending standardized HTTP JSON responses.

Every response uses the same envelope: a business code (0 on success), a message
and an optional data payload.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
)

// CodeSuccess is the envelope code of every successful response.
const CodeSuccess = 0

// JSONResponse is the envelope returned by every endpoint.
type JSONResponse struct {
	// Code is the business status code (0 for success, see the errs package otherwise).
	Code int `json:"code"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON writes payload as JSON with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
			"path", r.URL.Path,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess sends data wrapped in a success envelope (HTTP 200).
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// RespondError sends customErr in an error envelope using its HTTP status.
// A nil customErr is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
