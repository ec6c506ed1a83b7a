package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Login authenticates the user and returns the issued token and role.
// It does not touch the session store; see SetSession.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a ROLE_USER account and returns the backend's confirmation
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var msg string
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// RegisterAdmin creates the first ROLE_ADMIN account
func (c *Client) RegisterAdmin(ctx context.Context, req RegisterRequest) (string, error) {
	var msg string
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register-admin", nil, req, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// ForgotPassword asks the backend to mail a reset token
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	q.Set("email", email)

	var msg string
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", q, nil, "", &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// ResetPassword sets a new password using a mailed reset token
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	q := url.Values{}
	q.Set("token", token)
	q.Set("newPassword", newPassword)

	var msg string
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", q, nil, "", &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// UserIDByEmail resolves an account id from its email
func (c *Client) UserIDByEmail(ctx context.Context, email string) (int64, error) {
	var resp UserIDResponse
	path := fmt.Sprintf("/auth/email/%s", url.PathEscape(email))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return 0, err
	}
	if resp.UserID <= 0 {
		return 0, fmt.Errorf("no user id returned for %s", email)
	}
	return resp.UserID, nil
}

// GetProfile returns the profile of userID
func (c *Client) GetProfile(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/auth/profile/%d", userID), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile replaces the profile of userID; file is an optional avatar
func (c *Client) UpdateProfile(ctx context.Context, userID int64, profile User, file *File) (*User, error) {
	var user User
	path := fmt.Sprintf("/auth/profile/%d", userID)
	if err := c.doMultipart(ctx, http.MethodPut, path, partFile, profile, &user, file); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListBookNames returns every book name, sorted by the backend
func (c *Client) ListBookNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, "/auth/books", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ListAuthorNames returns every author name, sorted by the backend
func (c *Client) ListAuthorNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, "/auth/authors", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}
