package remote

import (
	"context"
	"net/http"

	"usersettings/internal/app/settings"
)

// Authentication endpoints of the settings service.
const (
	PathRegister = "/api/auth/register"
	PathLogin    = "/api/auth/login"
)

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by register and login.
type Session struct {
	Token    string                `json:"token"`
	Settings settings.UserSettings `json:"settings"`
}

// Register creates an account and adopts the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, PathRegister, email, password)
}

// Login signs in and adopts the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, PathLogin, email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	var session Session
	err := c.Do(ctx, settings.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   Credentials{Email: email, Password: password},
	}, &session)
	if err != nil {
		return Session{}, err
	}

	c.SetToken(session.Token)
	return session, nil
}
