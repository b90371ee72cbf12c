// Package task implements owner-scoped CRUD over to-do items.
package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInput carries caller-supplied task fields; the owner and timestamps
// are assigned server-side.
type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// Create inserts a task for the given owner, applying defaults: empty
// description, pending status, Low priority, due now.
func (uc *UseCase) Create(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if in.Title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     uc.now(),
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityLow
	}
	if !domain.ValidStatus(task.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown status")
	}
	if !domain.ValidPriority(task.Priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown priority")
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.String("task_id", created.ID))
	return created, nil
}

// List returns every task owned by the caller.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, userID)
}

// Get returns the task only when the caller owns it; otherwise the result is
// indistinguishable from a missing task.
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return uc.tasks.GetByOwner(ctx, id, userID)
}

// Update rewrites the caller's task with the provided fields. Omitted status,
// priority, and due date keep their stored values, so a partial edit never
// un-completes a task or moves its deadline.
func (uc *UseCase) Update(ctx context.Context, userID, id string, in CreateInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}

	existing, err := uc.tasks.GetByOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     existing.DueDate,
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if task.Status == "" {
		task.Status = existing.Status
	}
	if task.Priority == "" {
		task.Priority = existing.Priority
	}
	if !domain.ValidStatus(task.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown status")
	}
	if !domain.ValidPriority(task.Priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown priority")
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the caller's task; a foreign or absent id yields NotFound.
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	return uc.tasks.Delete(ctx, id, userID)
}
