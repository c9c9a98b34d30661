package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Login exchanges credentials for a bearer token. The backend takes the
// OAuth2 password form, so the email goes in the username field and the
// body is form-encoded rather than JSON. No session is required.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Token{}, errorFromResponse(resp.StatusCode, body)
	}

	var tok Token
	if err := unmarshalBody(body, &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// Register creates a new user account. No session is required.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (User, error) {
	var user User
	if err := c.doUnauthenticated(ctx, http.MethodPost, "/auth/register", reg, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Me returns the profile behind the current bearer token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user, nil); err != nil {
		return User{}, err
	}
	return user, nil
}

// MeWithToken fetches the profile using an explicit token, for the window
// during login before the credential has been stored.
func (c *Client) MeWithToken(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return User{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return User{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return User{}, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return User{}, errorFromResponse(resp.StatusCode, body)
	}

	var user User
	if err := unmarshalBody(body, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
