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
	"sync"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/client/models"
	"github.com/dmitrijs2005/tasklist/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	userID       string

	// refreshMu serializes refreshes so concurrent 401s trigger one round trip.
	refreshMu sync.Mutex
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Signup(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "/users", email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "/users/login", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (*models.User, error) {
	resp, err := c.send(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	c.setTokens(resp.Header.Get(common.AccessTokenHeaderName), resp.Header.Get(common.RefreshTokenHeaderName), user.ID)
	return &user, nil
}

// Logout drops the current session on the server and forgets the tokens.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}

	resp, err := c.send(ctx, http.MethodDelete, "/users/session", nil, c.sessionHeaders())
	c.setTokens("", "", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken != ""
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *HTTPClient) Lists(ctx context.Context) ([]*models.List, error) {
	var out []*models.List
	err := c.doAuthorized(ctx, http.MethodGet, "/lists", nil, &out)
	return out, err
}

func (c *HTTPClient) CreateList(ctx context.Context, title string) (*models.List, error) {
	var out models.List
	err := c.doAuthorized(ctx, http.MethodPost, "/lists", map[string]string{"title": title}, &out)
	return &out, err
}

func (c *HTTPClient) DeleteList(ctx context.Context, listID string) error {
	return c.doAuthorized(ctx, http.MethodDelete, "/lists/"+url.PathEscape(listID), nil, nil)
}

func (c *HTTPClient) Tasks(ctx context.Context, listID string) ([]*models.Task, error) {
	var out []*models.Task
	err := c.doAuthorized(ctx, http.MethodGet, tasksPath(listID), nil, &out)
	return out, err
}

func (c *HTTPClient) CreateTask(ctx context.Context, listID, title string) (*models.Task, error) {
	var out models.Task
	err := c.doAuthorized(ctx, http.MethodPost, tasksPath(listID), map[string]string{"title": title}, &out)
	return &out, err
}

func (c *HTTPClient) CompleteTask(ctx context.Context, listID, taskID string, completed bool) (*models.Task, error) {
	var out models.Task
	err := c.doAuthorized(ctx, http.MethodPatch, tasksPath(listID)+"/"+url.PathEscape(taskID), map[string]bool{"completed": completed}, &out)
	return &out, err
}

func tasksPath(listID string) string {
	return "/lists/" + url.PathEscape(listID) + "/tasks"
}

func (c *HTTPClient) setTokens(access, refresh, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
	c.userID = userID
}

func (c *HTTPClient) currentAccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *HTTPClient) sessionHeaders() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]string{
		common.RefreshTokenHeaderName: c.refreshToken,
		common.UserIDHeaderName:       c.userID,
	}
}

// doAuthorized sends a request with the access token. On a 401 it refreshes
// the access token once and retries.
func (c *HTTPClient) doAuthorized(ctx context.Context, method, path string, in, out any) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}

	token := c.currentAccessToken()
	err := c.doJSON(ctx, method, path, in, out, map[string]string{common.AccessTokenHeaderName: token})
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	if err := c.refresh(ctx, token); err != nil {
		return err
	}

	return c.doJSON(ctx, method, path, in, out, map[string]string{common.AccessTokenHeaderName: c.currentAccessToken()})
}

// refresh fetches a new access token. It is a no-op when another caller has
// already replaced stale.
func (c *HTTPClient) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.currentAccessToken() != stale {
		return nil
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/users/me/access-token", nil, &out, c.sessionHeaders())
	switch {
	case errors.Is(err, ErrUnauthorized):
		c.setTokens("", "", "")
		return ErrSessionExpired
	case err != nil:
		return err
	}

	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any, headers map[string]string) error {
	resp, err := c.send(ctx, method, path, in, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, in any, headers map[string]string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return &APIError{Status: resp.StatusCode, Message: eb.Message}
}
