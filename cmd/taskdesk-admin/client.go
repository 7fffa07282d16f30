// ABOUTME: Minimal JSON client for the taskdesk HTTP API
// ABOUTME: Sends the bearer token and unwraps the {success, data, error} envelope

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// envelope mirrors the server's response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

// apiError is a non-success response.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(baseURL, token string) *client {
	return &client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do sends body as JSON and decodes the envelope's data into out when out
// is non-nil. The raw response is returned for callers that need headers.
func (c *client) do(ctx context.Context, method, path string, body, out any) (*http.Response, *envelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp, nil, &apiError{Status: resp.StatusCode}
	}
	if !env.Success {
		return resp, &env, &apiError{Status: resp.StatusCode, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp, &env, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp, &env, nil
}

type user struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	RoleID       int       `json:"role_id"`
	PositionName *string   `json:"position_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type profileRequest struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	RejectReason *string   `json:"reject_reason"`
	Username     *string   `json:"username"`
}

type position struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Level       int     `json:"level"`
}

type task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	StatusName     string     `json:"status_name"`
	Priority       string     `json:"priority"`
	AssignedToName *string    `json:"assigned_to_name"`
	DueDate        *time.Time `json:"due_date"`
}
