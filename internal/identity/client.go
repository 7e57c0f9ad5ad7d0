// Package identity talks to the identity service: credential issuance on
// login and account creation on register. Both endpoints are anonymous; the
// rest of the client never sees a password, only the issued bearer token.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
)

// ErrEmailTaken means the register call hit an already-registered email.
var ErrEmailTaken = errors.New("email already registered")

type api interface {
	AnonymousJSON(ctx context.Context, method, path string, body any, out any) error
}

type Client struct {
	api    api
	logger *zap.Logger
}

func New(api api, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// Login exchanges username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	body := map[string]string{"username": username, "password": password}
	if err := c.api.AnonymousJSON(ctx, http.MethodPost, loginPath, body, &out); err != nil {
		return "", err
	}

	if out.AccessToken == "" {
		return "", errors.New("login response carried no token")
	}

	c.logger.Debug("login succeeded", zap.String("username", username))
	return out.AccessToken, nil
}

// Register creates an account. A conflict on the email surfaces as
// ErrEmailTaken so the caller can give a precise message.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	err := c.api.AnonymousJSON(ctx, http.MethodPost, registerPath, body, nil)
	if err == nil {
		return nil
	}

	var httpErr *transfer.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusConflict {
			return ErrEmailTaken
		}
		if httpErr.Status == http.StatusBadRequest &&
			strings.Contains(strings.ToLower(httpErr.Detail()), "already") {
			return ErrEmailTaken
		}
	}

	return err
}
