package api

import (
	"context"

	"github.com/0xacademy/academy/core"
)

// VerifyResponse is returned by a successful SIWE verification
type VerifyResponse struct {
	Token string     `json:"token"`
	User  *core.User `json:"user"`
}

// Nonce asks the backend for a single-use SIWE nonce bound to address.
// The request is sent without the current bearer token.
func (c *Client) Nonce(ctx context.Context, address string) (string, error) {
	ctx = anonymous(ctx)
	var resp struct {
		Nonce string `json:"nonce"`
	}
	if err := c.post(ctx, "/auth/nonce", map[string]string{"address": address}, &resp); err != nil {
		return "", err
	}
	return resp.Nonce, nil
}

// Verify exchanges a signed SIWE message for a session token.
// A rejection leaves the current session untouched.
func (c *Client) Verify(ctx context.Context, message, signature string) (*VerifyResponse, error) {
	ctx = anonymous(ctx)
	var resp VerifyResponse
	body := map[string]string{"message": message, "signature": signature}
	if err := c.post(ctx, "/auth/verify", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the profile behind the current token
func (c *Client) Me(ctx context.Context) (*core.User, error) {
	var resp struct {
		User *core.User `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout invalidates the token on the backend
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}
