package api

import (
	"context"
	"time"

	"task-manager/internal/domain"
)

// TaskSummary counts an owner's tasks by state
type TaskSummary struct {
	Total       int          `json:"total"`
	Completed   int          `json:"completed"`
	Open        int          `json:"open"`
	LastUpdated *time.Time   `json:"last_updated,omitempty"`
	OldestOpen  *domain.Task `json:"oldest_open,omitempty"`
}

// SummarizeTasks aggregates the owner's current tasks
func (a *apiImpl) SummarizeTasks(ctx context.Context, ownerID int64) (*TaskSummary, error) {
	tasks, err := a.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return summarize(tasks), nil
}

// summarize expects tasks newest first, as ListTasks returns them
func summarize(tasks []domain.Task) *TaskSummary {
	summary := &TaskSummary{Total: len(tasks)}
	for i := range tasks {
		task := tasks[i]
		if task.Completed {
			summary.Completed++
		} else {
			summary.Open++
			summary.OldestOpen = &task
		}
		if summary.LastUpdated == nil || task.UpdatedAt.After(*summary.LastUpdated) {
			updated := task.UpdatedAt
			summary.LastUpdated = &updated
		}
	}
	return summary
}
