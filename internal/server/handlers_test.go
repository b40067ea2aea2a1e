package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAPI counts store-backed calls and can fail or stall them
type recordingAPI struct {
	api.API
	calls   int
	err     error
	gotCtx  context.Context
	tasks   []domain.Task
	release chan struct{}
}

func (r *recordingAPI) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	r.calls++
	r.gotCtx = ctx
	if r.release != nil {
		<-r.release
	}
	return r.tasks, r.err
}

func (r *recordingAPI) CreateTask(ctx context.Context, ownerID int64, title string) (*domain.Task, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Task{ID: 1, OwnerID: ownerID, Title: title}, nil
}

func (r *recordingAPI) DeleteTask(ctx context.Context, ownerID, id int64) error {
	r.calls++
	return r.err
}

// staticIdentity resolves every request to one caller, or fails
type staticIdentity struct {
	identity domain.Identity
	err      error
}

func (s staticIdentity) Verify(ctx context.Context, r *http.Request) (domain.Identity, error) {
	return s.identity, s.err
}

func newHandlerServer(cfg *config.Config, a api.API, sessions IdentityResolver) *Server {
	return NewWithResolver(a, cfg, logging.NewDiscard(), sessions)
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandlers_NoStoreCallWithoutSession(t *testing.T) {
	fake := &recordingAPI{}
	s := newHandlerServer(testConfig(), fake, staticIdentity{err: errors.NewUnauthenticatedError("missing session token")})

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodGet, "/tasks", ""},
		{http.MethodPost, "/tasks", `{"title":"x"}`},
		{http.MethodPost, "/tasks", `{`},
		{http.MethodDelete, "/tasks?id=1", ""},
		{http.MethodDelete, "/tasks", ""},
	} {
		rec := serve(s, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
	}
	assert.Zero(t, fake.calls)
}

func TestHandlers_NoStoreCallOnInvalidInput(t *testing.T) {
	fake := &recordingAPI{}
	s := newHandlerServer(testConfig(), fake, staticIdentity{identity: domain.Identity{UserID: 1}})

	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodPost, "/tasks", `{"title":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodPost, "/tasks", `[]`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodDelete, "/tasks?id=-4", "").Code)
	assert.Zero(t, fake.calls)
}

func TestHandlers_InternalErrorDetails(t *testing.T) {
	storeErr := stderrors.New("connection reset by peer")

	tests := []struct {
		name        string
		environment string
		err         error
		wantDetails bool
		wantMessage string
	}{
		{"production hides details", config.Production, storeErr, false, "An unexpected error occurred. Please try again."},
		{"development shows details", config.Development, storeErr, true, "An unexpected error occurred. Please try again."},
		{"database error production", config.Production, errors.NewDatabaseError("list tasks", storeErr), false, "A database error occurred. Please try again."},
		{"database error development", config.Development, errors.NewDatabaseError("list tasks", storeErr), true, "A database error occurred. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Application.Environment = tt.environment
			s := newHandlerServer(cfg, &recordingAPI{err: tt.err}, staticIdentity{identity: domain.Identity{UserID: 1}})

			rec := serve(s, http.MethodGet, "/tasks", "")
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantMessage, resp.Error)
			if tt.wantDetails {
				assert.Contains(t, resp.Details, "connection reset by peer")
			} else {
				assert.Empty(t, resp.Details)
				assert.NotContains(t, rec.Body.String(), "connection reset")
			}
		})
	}
}

func TestHandlers_StoreContextSurvivesCancellation(t *testing.T) {
	fake := &recordingAPI{tasks: []domain.Task{{ID: 1, Title: "kept"}}, release: make(chan struct{})}
	s := newHandlerServer(testConfig(), fake, staticIdentity{identity: domain.Identity{UserID: 1}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.Handler().ServeHTTP(rec, req)
		close(done)
	}()

	cancel()
	close(fake.release)
	<-done

	require.NotNil(t, fake.gotCtx)
	assert.NoError(t, fake.gotCtx.Err())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlers_RequestID(t *testing.T) {
	s := newHandlerServer(testConfig(), &recordingAPI{}, staticIdentity{identity: domain.Identity{UserID: 1}})

	rec := serve(s, http.MethodGet, "/tasks", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set(requestIDHeader, "6f1f0c3e-6c1b-4a4e-9d59-3f0d8f3a2b10")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "6f1f0c3e-6c1b-4a4e-9d59-3f0d8f3a2b10", rec.Header().Get(requestIDHeader))
}

func TestHandlers_RecoversPanics(t *testing.T) {
	s := newHandlerServer(testConfig(), &panickingAPI{}, staticIdentity{identity: domain.Identity{UserID: 1}})

	rec := serve(s, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panickingAPI struct {
	api.API
}

func (panickingAPI) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	panic("boom")
}
