package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a session token.
type Payload struct {
	// StandardClaims carries exp, iat and iss; Valid() is promoted from it.
	jwt.StandardClaims

	// ID is the account ID (UUID string) of the token holder.
	ID string `json:"id"`

	// Email is the account email at the time the token was issued.
	Email string `json:"email"`
}
