package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/logging"
	"task-manager/internal/repository/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse"

type testEnv struct {
	server *Server
	cfg    *config.Config
	store  *sqlstore.Store
	issuer *auth.Issuer
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Auth.Secret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func setupServer(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	store, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		server: New(api.NewWithConfig(store, cfg), cfg, logging.NewDiscard()),
		cfg:    cfg,
		store:  store,
		issuer: auth.NewIssuer(cfg.Auth),
	}
}

// addUser stores a user and returns a session token for it
func (e *testEnv) addUser(t *testing.T, email string) (*sqlstore.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	user := &sqlstore.User{Email: email, PasswordHash: hash}
	require.NoError(t, e.store.CreateUser(context.Background(), user))

	token, _, err := e.issuer.Issue(domain.User{ID: user.ID, Email: user.Email})
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) domain.Task {
	t.Helper()
	var task domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task), rec.Body.String())
	return task
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestTasks_CreateListGet(t *testing.T) {
	env := setupServer(t, testConfig())
	user, token := env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/tasks", token, `{"title":"  Buy milk  "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	created := decodeTask(t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.Equal(t, user.ID, created.OwnerID)

	rec = env.do(t, http.MethodGet, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks?id=%d", created.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeTask(t, rec).ID)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Buy milk", decodeTask(t, rec).Title)
}

func TestTasks_ListEmptyIsArray(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodGet, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTasks_ListNewestFirst(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	for _, title := range []string{"first", "second", "third"} {
		rec := env.do(t, http.MethodPost, "/tasks", token, fmt.Sprintf(`{"title":%q}`, title))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
	assert.Equal(t, "first", tasks[2].Title)
}

func TestTasks_Unauthenticated(t *testing.T) {
	env := setupServer(t, testConfig())
	env.addUser(t, "alice@example.com")

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
	}{
		{"list without token", http.MethodGet, "/tasks", "", ""},
		{"get without token", http.MethodGet, "/tasks/1", "", ""},
		{"create without token", http.MethodPost, "/tasks", "", `{"title":"x"}`},
		{"invalid body without token", http.MethodPost, "/tasks", "", `not json`},
		{"update without token", http.MethodPut, "/tasks", "", `{"id":1,"title":"x","completed":true}`},
		{"delete without token", http.MethodDelete, "/tasks?id=1", "", ""},
		{"garbage token", http.MethodGet, "/tasks", "not-a-token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.token, tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "Unauthorized", resp.Error)
			assert.Equal(t, "UNAUTHENTICATED", resp.Code)
		})
	}
}

func TestTasks_SessionCookie(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: env.cfg.Auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTasks_TokenForDeletedUser(t *testing.T) {
	env := setupServer(t, testConfig())
	token, _, err := env.issuer.Issue(domain.User{ID: 999, Email: "ghost@example.com"})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/tasks", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTasks_CrossOwnerLooksMissing(t *testing.T) {
	env := setupServer(t, testConfig())
	_, aliceToken := env.addUser(t, "alice@example.com")
	_, bobToken := env.addUser(t, "bob@example.com")

	rec := env.do(t, http.MethodPost, "/tasks", aliceToken, `{"title":"private"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeTask(t, rec)

	get := env.do(t, http.MethodGet, fmt.Sprintf("/tasks?id=%d", task.ID), bobToken, "")
	assert.Equal(t, http.StatusNotFound, get.Code)

	update := env.do(t, http.MethodPut, "/tasks", bobToken, fmt.Sprintf(`{"id":%d,"title":"hijacked","completed":true}`, task.ID))
	assert.Equal(t, http.StatusNotFound, update.Code)

	del := env.do(t, http.MethodDelete, fmt.Sprintf("/tasks?id=%d", task.ID), bobToken, "")
	assert.Equal(t, http.StatusNotFound, del.Code)

	missing := env.do(t, http.MethodGet, "/tasks?id=424242", bobToken, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, decodeError(t, missing).Code, decodeError(t, get).Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private", decodeTask(t, rec).Title)
	assert.False(t, decodeTask(t, rec).Completed)
}

func TestTasks_GetNonNumericID(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/tasks?id=abc", token, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/tasks/abc", token, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/tasks?id=", token, "").Code)
}

func TestTasks_CreateValidation(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{"missing title", `{}`, "VALIDATION_FAILED", "title"},
		{"blank title", `{"title":"   "}`, "VALIDATION_FAILED", "title"},
		{"title too long", fmt.Sprintf(`{"title":%q}`, strings.Repeat("a", 101)), "VALIDATION_FAILED", "title"},
		{"title wrong type", `{"title":42}`, "VALIDATION_FAILED", "title"},
		{"malformed json", `{"title":`, "MALFORMED_BODY", ""},
		{"empty body", ``, "MALFORMED_BODY", ""},
		{"trailing garbage", `{"title":"x"} junk`, "MALFORMED_BODY", ""},
		{"two documents", `{"title":"a"}{"title":"b"}`, "MALFORMED_BODY", ""},
		{"invalid utf-8 title", "{\"title\":\"\xff\xfe\"}", "VALIDATION_FAILED", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/tasks", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantField != "" {
				require.NotEmpty(t, resp.Errors)
				assert.Equal(t, tt.wantField, resp.Errors[0].Field)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/tasks", token, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTasks_Update(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/tasks", token, `{"title":"draft"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeTask(t, rec)

	rec = env.do(t, http.MethodPut, "/tasks", token, fmt.Sprintf(`{"id":%d,"title":"final","completed":true}`, task.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeTask(t, rec)
	assert.Equal(t, task.ID, updated.ID)
	assert.Equal(t, "final", updated.Title)
	assert.True(t, updated.Completed)

	again := env.do(t, http.MethodPut, "/tasks", token, fmt.Sprintf(`{"id":%d,"title":"final","completed":true}`, task.ID))
	require.Equal(t, http.StatusOK, again.Code)
	repeated := decodeTask(t, again)
	assert.Equal(t, updated.Title, repeated.Title)
	assert.Equal(t, updated.Completed, repeated.Completed)

	rec = env.do(t, http.MethodPut, "/tasks", token, fmt.Sprintf(`{"id":%d,"title":"final"}`, task.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/tasks", token, `{"id":424242,"title":"ghost","completed":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasks_Delete(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/tasks", token, `{"title":"temporary"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeTask(t, rec)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/tasks", token, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/tasks?id=abc", token, "").Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/tasks?id=%d", task.ID), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/tasks?id=%d", task.ID), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasks_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 32
	env := setupServer(t, cfg)
	_, token := env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/tasks", token, fmt.Sprintf(`{"title":%q}`, strings.Repeat("a", 64)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodos_Forms(t *testing.T) {
	env := setupServer(t, testConfig())
	_, token := env.addUser(t, "alice@example.com")

	post := func(target string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := post("/todos", url.Values{"title": {"Water plants"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, dashboardPath, rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/tasks", token, "")
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	rec = post("/todos/update", url.Values{"id": {fmt.Sprint(id)}, "title": {"Water all plants"}, "completed": {"on"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", id), token, "")
	got := decodeTask(t, rec)
	assert.Equal(t, "Water all plants", got.Title)
	assert.True(t, got.Completed)

	rec = post("/todos", url.Values{"title": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/todos?id=%d", id), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSession_LoginLogout(t *testing.T) {
	env := setupServer(t, testConfig())
	env.addUser(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/login", "", `{"email":"Alice@Example.com","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, env.cfg.Auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/tasks", resp.Token, "").Code)

	rec = env.do(t, http.MethodPost, "/login", "", `{"email":"alice@example.com","password":"wrong password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, rec).Error)

	rec = env.do(t, http.MethodPost, "/logout", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestHealth(t *testing.T) {
	env := setupServer(t, testConfig())

	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	env.store.Close()
	rec = env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouting_UnknownRouteAndMethod(t *testing.T) {
	env := setupServer(t, testConfig())

	rec := env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodPatch, "/tasks", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ShutdownTimeout = time.Second
	env := setupServer(t, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
