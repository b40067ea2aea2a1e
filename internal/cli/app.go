package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/repository/sqlstore"

	"github.com/charmbracelet/log"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App carries what a command needs to run
type App struct {
	api    api.API
	store  *sqlstore.Store
	config *config.Config
	logger *log.Logger
	out    io.Writer
}

// NewApp creates a CLI application over an opened store
func NewApp(a api.API, store *sqlstore.Store, cfg *config.Config, logger *log.Logger, out io.Writer) *App {
	return &App{
		api:    a,
		store:  store,
		config: cfg,
		logger: logger,
		out:    out,
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// readPassword reads the first line of r
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
