package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("http-test-secret")

type testEnv struct {
	srv    *HTTPServer
	issuer *auth.JWTIssuer
	m      *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rm := repomanager.NewInMemoryRepositoryManager()
	issuer := auth.NewJWTIssuer(testSecret, 15*time.Minute)
	mtr := metrics.New()
	sessions := services.NewSessionService(rm, issuer, services.DefaultSessionTTL, services.WithSessionMetrics(mtr))

	srv := NewHTTPServer("127.0.0.1:0", logging.Nop(), Deps{
		Users:    services.NewUserService(rm, issuer, auth.NewBcryptHasher(bcrypt.MinCost), sessions, time.Second),
		Lists:    services.NewListService(rm, time.Second),
		Sessions: sessions,
		Issuer:   issuer,
		Store:    rm,
		Metrics:  mtr,
	})
	return &testEnv{srv: srv, issuer: issuer, m: mtr}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

type session struct {
	userID       string
	accessToken  string
	refreshToken string
}

func (e *testEnv) signup(t *testing.T, email string) session {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/users", `{"email":"`+email+`","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var u map[string]any
	require.NoError(t, json.Unmarshal(body, &u))

	return session{
		userID:       u["_id"].(string),
		accessToken:  resp.Header.Get(common.AccessTokenHeaderName),
		refreshToken: resp.Header.Get(common.RefreshTokenHeaderName),
	}
}

func messageOf(t *testing.T, body []byte) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Message
}

func TestSignup_EndToEnd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodPost, "/users", `{"email":"a@b.com","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, resp.Header.Get(common.AccessTokenHeaderName))
	assert.Len(t, resp.Header.Get(common.RefreshTokenHeaderName), 128)

	var u map[string]any
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, "a@b.com", u["email"])
	assert.NotEmpty(t, u["_id"])
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "sessions")

	token := resp.Header.Get(common.AccessTokenHeaderName)
	resp, body = e.do(t, http.MethodGet, "/lists", "", map[string]string{common.AccessTokenHeaderName: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	mutated := []byte(token)
	i := strings.LastIndexByte(token, '.') + 1
	if mutated[i] == 'A' {
		mutated[i] = 'B'
	} else {
		mutated[i] = 'A'
	}
	resp, body = e.do(t, http.MethodGet, "/lists", "", map[string]string{common.AccessTokenHeaderName: string(mutated)})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrInvalidSignature.Error(), messageOf(t, body))
}

func TestSignup_Errors(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.signup(t, "a@b.com")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate", `{"email":"a@b.com","password":"secret123"}`, http.StatusConflict},
		{"duplicate other case", `{"email":" A@B.COM ","password":"secret123"}`, http.StatusConflict},
		{"short password", `{"email":"c@d.com","password":"1234"}`, http.StatusBadRequest},
		{"missing email", `{"password":"secret123"}`, http.StatusBadRequest},
		{"bad json", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(t, http.MethodPost, "/users", tt.body, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, messageOf(t, body))
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	s := e.signup(t, "a@b.com")

	resp, body := e.do(t, http.MethodPost, "/users/login", `{"email":"a@b.com","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(common.AccessTokenHeaderName))
	assert.NotEqual(t, s.refreshToken, resp.Header.Get(common.RefreshTokenHeaderName))
	assert.Contains(t, string(body), s.userID)

	resp, _ = e.do(t, http.MethodPost, "/users/login", `{"email":"a@b.com","password":"wrong-one"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/users/login", `{"email":"x@b.com","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	s := e.signup(t, "a@b.com")

	past := time.Now().Add(-time.Hour)
	expired, err := auth.NewJWTIssuer(testSecret, 15*time.Minute, auth.WithClock(func() time.Time { return past })).IssueAccessToken(s.userID)
	require.NoError(t, err)

	foreign, err := auth.NewJWTIssuer([]byte("other"), time.Minute).IssueAccessToken(s.userID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", common.ErrTokenMalformed},
		{"garbage", "not-a-jwt", common.ErrTokenMalformed},
		{"expired", expired, common.ErrTokenExpired},
		{"wrong secret", foreign, common.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers[common.AccessTokenHeaderName] = tt.token
			}
			resp, body := e.do(t, http.MethodPost, "/lists", `{"title":"x"}`, headers)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.want.Error(), messageOf(t, body))
		})
	}

	// nothing was created by the rejected requests
	resp, body := e.do(t, http.MethodGet, "/lists", "", map[string]string{common.AccessTokenHeaderName: s.accessToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestAuthenticate_PropagatesUserID(t *testing.T) {
	t.Parallel()
	issuer := auth.NewJWTIssuer(testSecret, 15*time.Minute)
	token, err := issuer.IssueAccessToken("user-42")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/whoami", Authenticate(issuer, nil), func(c *fiber.Ctx) error {
		id, ok := UserIDFromContext(c.UserContext())
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"ctx": id, "locals": c.Locals(LocalUserID)})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(common.AccessTokenHeaderName, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ctx":"user-42","locals":"user-42"}`, string(body))

	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestRefreshAndLogout(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	s := e.signup(t, "a@b.com")
	other := e.signup(t, "c@d.com")

	headers := map[string]string{
		common.RefreshTokenHeaderName: s.refreshToken,
		common.UserIDHeaderName:       s.userID,
	}

	resp, body := e.do(t, http.MethodGet, "/users/me/access-token", "", headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out accessTokenResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, out.AccessToken, resp.Header.Get(common.AccessTokenHeaderName))

	userID, err := e.issuer.VerifyAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.userID, userID)

	// another user's refresh token does not unlock this account
	resp, body = e.do(t, http.MethodGet, "/users/me/access-token", "", map[string]string{
		common.RefreshTokenHeaderName: other.refreshToken,
		common.UserIDHeaderName:       s.userID,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrSessionNotFound.Error(), messageOf(t, body))

	resp, body = e.do(t, http.MethodGet, "/users/me/access-token", "", map[string]string{
		common.RefreshTokenHeaderName: s.refreshToken,
		common.UserIDHeaderName:       "ghost",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrUserNotFound.Error(), messageOf(t, body))

	resp, _ = e.do(t, http.MethodDelete, "/users/session", "", headers)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/users/me/access-token", "", headers)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type unavailableSessions struct{ services.SessionManager }

func (unavailableSessions) ValidateSession(context.Context, string, string) (*models.User, error) {
	return nil, common.ErrStoreUnavailable
}

func TestVerifySession_StoreUnavailable(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.srv = NewHTTPServer("127.0.0.1:0", logging.Nop(), Deps{
		Users:    e.srv.deps.Users,
		Lists:    e.srv.deps.Lists,
		Sessions: unavailableSessions{},
		Issuer:   e.issuer,
	})

	resp, body := e.do(t, http.MethodGet, "/users/me/access-token", "", map[string]string{
		common.RefreshTokenHeaderName: "x",
		common.UserIDHeaderName:       "y",
	})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, messageOf(t, body), common.ErrStoreUnavailable.Error())
}

func TestListsAndTasks(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	alice := map[string]string{common.AccessTokenHeaderName: e.signup(t, "alice@x.com").accessToken}
	bob := map[string]string{common.AccessTokenHeaderName: e.signup(t, "bob@x.com").accessToken}

	resp, body := e.do(t, http.MethodPost, "/lists", `{"title":"Groceries"}`, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var list struct {
		ID     string `json:"_id"`
		Title  string `json:"title"`
		UserID string `json:"_userId"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, "Groceries", list.Title)

	resp, _ = e.do(t, http.MethodPost, "/lists", `{"title":"  "}`, alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	tasksPath := "/lists/" + list.ID + "/tasks"

	resp, body = e.do(t, http.MethodPost, tasksPath, `{"title":"milk"}`, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var task struct {
		ID        string `json:"_id"`
		Completed bool   `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(body, &task))

	resp, _ = e.do(t, http.MethodGet, tasksPath, "", bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, tasksPath+"/"+task.ID, `{"completed":true}`, bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodPatch, tasksPath+"/"+task.ID, `{"completed":true}`, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"completed":true`)

	resp, _ = e.do(t, http.MethodPatch, "/lists/"+list.ID, `{"title":"Food"}`, alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, tasksPath+"/"+task.ID, "", alice)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/lists/"+list.ID, "", bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/lists/"+list.ID, "", alice)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, tasksPath, "", alice)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReadyMetrics(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	e.do(t, http.MethodGet, "/lists", "", nil)
	e.signup(t, "a@b.com")

	resp, body := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tasklist_auth_failures_total{gate="access",reason="missing"} 1`)
	assert.Contains(t, string(body), `tasklist_sessions_created_total 1`)
	assert.Contains(t, string(body), `tasklist_http_request_duration_seconds_bucket`)

	e.srv.deps.Store = failingPinger{}
	resp, body = e.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "not_ready")
}

func TestCORS(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodOptions, "/users/me/access-token", "", map[string]string{
		"Origin":                         "http://localhost:4200",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "x-refresh-token, _id",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "_id")

	resp, _ = e.do(t, http.MethodPost, "/users", `{"email":"a@b.com","password":"secret123"}`, map[string]string{
		"Origin": "http://localhost:4200",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exposed := resp.Header.Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, common.AccessTokenHeaderName)
	assert.Contains(t, exposed, common.RefreshTokenHeaderName)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.srv.address = "127.0.0.1:99999"

	require.Error(t, e.srv.Run(context.Background()))
}
