// Package client talks to the toolhub API and keeps the login session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"toolhub/internal/model"
	"toolhub/internal/utils"
)

const defaultBaseURL = "http://localhost:8080"

var (
	// ErrNotLoggedIn is returned by protected calls made without a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionCleared wraps the 401 that caused the stored session to be dropped.
	ErrSessionCleared = errors.New("session expired, please log in again")
)

// Client provides typed access to the toolhub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
// A nil store keeps the session in memory only.
func New(base string, store Store, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// SignupResponse is the body returned by POST /signup.
type SignupResponse struct {
	Message string            `json:"message"`
	User    model.CreatedUser `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and stores the token with the role it carries.
// A rejected login drops any session stored before it.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp loginResponse
	body := model.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", body, "", &resp); err != nil {
		return nil, c.handleAuthError(err)
	}
	if resp.Token == "" {
		return nil, errors.New("login response carried no token")
	}

	session := Session{Token: resp.Token, Role: model.RoleUser}
	if claims, err := utils.DecodeUnverified(resp.Token); err == nil {
		if claims.User.Role != "" {
			session.Role = claims.User.Role
		}
		session.Email = claims.User.Email
	}
	if err := c.store.Save(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &session, nil
}

// Dashboard fetches the caller's tool list. A 401 clears the stored session.
func (c *Client) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	session, err := c.session()
	if err != nil {
		return nil, err
	}
	var dashboard model.Dashboard
	if err := c.do(ctx, http.MethodGet, "/user/dashboard", nil, session.Token, &dashboard); err != nil {
		return nil, c.handleAuthError(err)
	}
	return &dashboard, nil
}

func (c *Client) PublicTools(ctx context.Context) ([]model.CategoryGroup, error) {
	var groups []model.CategoryGroup
	if err := c.do(ctx, http.MethodGet, "/public-tools", nil, "", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// IsLoggedIn reports whether a session token is stored.
func (c *Client) IsLoggedIn() bool {
	session, err := c.store.Load()
	return err == nil && session != nil
}

// Role returns the stored role hint, or "" without a session.
func (c *Client) Role() string {
	session, err := c.store.Load()
	if err != nil || session == nil {
		return ""
	}
	return session.Role
}

// Session returns the stored session, or ErrNotLoggedIn.
func (c *Client) Session() (*Session, error) {
	return c.session()
}

func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) session() (*Session, error) {
	session, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrNotLoggedIn
	}
	return session, nil
}

// handleAuthError clears the stored session on a 401. The error is wrapped with
// ErrSessionCleared only when a session was actually dropped.
func (c *Client) handleAuthError(err error) error {
	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	session, loadErr := c.store.Load()
	if clearErr := c.store.Clear(); clearErr != nil {
		return errors.Join(err, fmt.Errorf("clear session: %w", clearErr))
	}
	if loadErr == nil && session == nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSessionCleared, err)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return APIError{Status: resp.StatusCode, Message: extractMessage(resp.Body)}
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Message)
}
