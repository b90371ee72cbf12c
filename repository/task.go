package repository

import (
	"context"
	"time"

	"github.com/taskify/backend/domain"
)

type TaskRepository interface {
	// GetByOwner returns domain.ErrTaskNotFound when the task does not
	// exist or belongs to another user; callers cannot tell which.
	GetByOwner(ctx context.Context, id, userID string) (*domain.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, userID string) error
	// ListDueBetween returns tasks with a due date inside [start, end]
	// whose reminder has not been sent yet.
	ListDueBetween(ctx context.Context, start, end time.Time) ([]domain.Task, error)
	// MarkReminderSent flips the reminder flag; it never reverts.
	MarkReminderSent(ctx context.Context, id string) error
}
