package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/repository/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type cliEnv struct {
	dsn string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("TM_CONFIG", "")
	t.Setenv("TM_AUTH_SECRET", "")
	return &cliEnv{dsn: filepath.Join(t.TempDir(), "tm.db")}
}

// run executes tm with the test database and returns stdout
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(config.CreateRepository)

	var out bytes.Buffer
	cmd := root.Command()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db-dsn", e.dsn, "--auth-secret", testSecret}, args...))

	err := root.Execute(context.Background())
	return out.String(), err
}

// openStore opens the test database directly
func (e *cliEnv) openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.DSN = e.dsn
	store, err := config.CreateRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrate(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Applied migrations: 1, 2\n", out)

	out, err = env.run(t, "", "migrate", "--rollback", "1")
	require.NoError(t, err)
	assert.Equal(t, "Rolled back migration 2\nApplied migrations: 1\n", out)

	_, err = env.run(t, "", "migrate", "--rollback", "-1")
	assert.Error(t, err)
}

func TestUserAddAndToken(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "correct horse\n", "user", "add", "--email", "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Created user alice@example.com (id 1)\n", out)

	_, err = env.run(t, "", "user", "add", "--email", "alice@example.com", "--password", "another password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user")
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, err = env.run(t, "", "user", "add", "--email", "bob@example.com", "--password", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password must be at least 8 characters long")

	out, err = env.run(t, "", "token", "--email", "alice@example.com")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	cfg := config.NewConfig()
	cfg.Auth.Secret = testSecret
	verifier := auth.NewVerifier(cfg.Auth, api.New(env.openStore(t)))
	req, _ := http.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	identity, err := verifier.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)

	_, err = env.run(t, "", "token", "--email", "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestTasks(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "user", "add", "--email", "alice@example.com", "--password", "correct horse")
	require.NoError(t, err)

	out, err := env.run(t, "", "tasks", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "No tasks found\n", out)

	store := env.openStore(t)
	a := api.New(store)
	ctx := context.Background()
	user, err := a.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	first, err := a.CreateTask(ctx, user.ID, "Buy milk")
	require.NoError(t, err)
	_, err = a.UpdateTask(ctx, user.ID, first.ID, "Buy milk", true)
	require.NoError(t, err)
	_, err = a.CreateTask(ctx, user.ID, "Water plants")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	original := timeNow
	timeNow = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { timeNow = original }()

	out, err = env.run(t, "", "tasks", "--email", "alice@example.com")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "[ ] #2 Water plants (created 2 hours ago)", lines[0])
	assert.Equal(t, "[x] #1 Buy milk (created 2 hours ago)", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "2 total, 1 completed, 1 open", lines[3])
	assert.Equal(t, "Oldest open: Water plants (created 2 hours ago)", lines[4])
}

func TestConfigErrors(t *testing.T) {
	env := newCLIEnv(t)
	root := NewRootCommand(config.CreateRepository)
	cmd := root.Command()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db-dsn", env.dsn, "migrate"})

	err := root.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, err = env.run(t, "", "--env", "staging", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application.environment")
}

func TestServe_StopsWithContext(t *testing.T) {
	env := newCLIEnv(t)
	root := NewRootCommand(config.CreateRepository)
	cmd := root.Command()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db-dsn", env.dsn, "--auth-secret", testSecret, "--addr", "127.0.0.1:0", "serve"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- root.Execute(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
