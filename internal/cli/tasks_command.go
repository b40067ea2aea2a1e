package cli

import (
	"context"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/domain"

	"github.com/dustin/go-humanize"
)

// TasksCommand handles the tasks command
type TasksCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTasksCommand creates a new tasks command handler
func NewTasksCommand(app *App) *TasksCommand {
	return &TasksCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints the account's tasks, newest first, and a summary
func (c *TasksCommand) Execute(ctx context.Context, email string) error {
	user, err := c.app.api.GetUserByEmail(ctx, email)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	tasks, err := c.app.api.ListTasks(ctx, user.ID)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(tasks) == 0 {
		c.app.printf("No tasks found\n")
		return nil
	}

	for _, task := range tasks {
		c.printTask(task)
	}

	summary, err := c.app.api.SummarizeTasks(ctx, user.ID)
	if err != nil {
		return c.errorHandler.Handle("summarize tasks", err)
	}
	c.printSummary(summary)
	return nil
}

// printTask prints one line per task:
// [x] #id title (created 3 hours ago)
func (c *TasksCommand) printTask(task domain.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	c.app.printf("[%s] #%d %s (created %s)\n", mark, task.ID, task.Title, c.relative(task.CreatedAt))
}

func (c *TasksCommand) printSummary(summary *api.TaskSummary) {
	c.app.printf("\n%s total, %s completed, %s open\n",
		humanize.Comma(int64(summary.Total)),
		humanize.Comma(int64(summary.Completed)),
		humanize.Comma(int64(summary.Open)))
	if summary.OldestOpen != nil {
		c.app.printf("Oldest open: %s (created %s)\n", summary.OldestOpen.Title, c.relative(summary.OldestOpen.CreatedAt))
	}
}

func (c *TasksCommand) relative(t time.Time) string {
	return humanize.RelTime(t, timeNow(), "ago", "from now")
}
