// Package api implements a small HTTP client for the authgate server, used
// by the command-line tool. The refresh-token cookie is held in the client's
// cookie jar; the access token is kept only in memory.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

type Client struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

// PublicUser mirrors the server's public account projection.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type apiResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	AccessToken string      `json:"accessToken"`
	Data        *PublicUser `json:"data"`
	User        *PublicUser `json:"user"`
	UserID      string      `json:"userId"`
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Signup registers a new account and returns its public projection.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*PublicUser, error) {
	resp, err := c.post(ctx, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Login authenticates and stores the access token for subsequent calls. The
// refresh cookie lands in the jar automatically.
func (c *Client) Login(ctx context.Context, email, password string) (*PublicUser, error) {
	resp, err := c.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	c.accessToken = resp.AccessToken
	return resp.User, nil
}

// Refresh trades the refresh cookie for a fresh access token.
func (c *Client) Refresh(ctx context.Context) error {
	resp, err := c.post(ctx, "/api/auth/refresh", nil)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	return nil
}

// Logout discards the session on both sides.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.post(ctx, "/api/auth/logout", nil); err != nil {
		return err
	}
	c.accessToken = ""
	return nil
}

// Me returns the authenticated user id.
func (c *Client) Me(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/me", nil)
	if err != nil {
		return "", err
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*apiResponse, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*apiResponse, error) {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	resp := &apiResponse{}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		if resp.Message != "" {
			return nil, fmt.Errorf("server: %s", resp.Message)
		}
		return nil, fmt.Errorf("server: %s", httpResp.Status)
	}

	return resp, nil
}
