/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside the
settings service and in the responses returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed or carries unknown fields.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Settings and Avatar Errors
const (
	// ErrInvalidEmail indicates that the submitted email address is malformed.
	ErrInvalidEmail = 2101

	// ErrInvalidDateOfBirth indicates that dateOfBirth is not a YYYY-MM-DD date.
	ErrInvalidDateOfBirth = 2102

	// ErrInvalidPassword indicates that the new password violates the length rules.
	ErrInvalidPassword = 2103

	// ErrPasswordMismatch indicates that password and confirmPassword differ.
	ErrPasswordMismatch = 2104

	// ErrOldPasswordInvalid indicates that oldPassword does not match the stored password.
	ErrOldPasswordInvalid = 2105

	// ErrAvatarMissing indicates that the upload request carried no avatar file part.
	ErrAvatarMissing = 2201

	// ErrAvatarTypeInvalid indicates that the avatar MIME type or extension is not allowed.
	ErrAvatarTypeInvalid = 2202

	// ErrFileSizeTooLarge indicates that the avatar exceeds the maximum size.
	ErrFileSizeTooLarge = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates that email or password is wrong.
	ErrInvalidCredentials = 3002

	// ErrUserAlreadyExists indicates that the email is already registered.
	ErrUserAlreadyExists = 3003

	// ErrUserNotFound indicates that the account behind a valid token no longer exists.
	ErrUserNotFound = 3004

	// ErrAlreadyLoggedIn indicates that an authenticated caller tried to register or log in again.
	ErrAlreadyLoggedIn = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage rejected an operation.
	ErrFileStorageFailed = 5001
)
