// Package services hosts background workers that run outside the HTTP
// request path.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/internal/mail"
	"github.com/taskify/backend/repository"
)

// DefaultReminderHour is the local hour the daily job falls back to when the
// configured hour is out of range.
const DefaultReminderHour = 8

// ReminderConfig controls the daily reminder job.
type ReminderConfig struct {
	// Hour is the local wall-clock hour the job fires at.
	Hour        int
	SendTimeout time.Duration
	MarkTTL     time.Duration
}

// ReminderProcessor scans for tasks due tomorrow and emails each owner once.
// Send and mark are separate operations with no transaction, so delivery is
// at-least-once; the Redis idempotency mark narrows the duplicate window when
// a previous run died between send and mark.
type ReminderProcessor struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	marks  repository.ReminderMarkRepository
	mailer mail.Mailer
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ReminderConfig

	now func() time.Time
}

func NewReminderProcessor(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	marks repository.ReminderMarkRepository,
	mailer mail.Mailer,
	logger *zap.Logger,
	cfg ReminderConfig,
) *ReminderProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.MarkTTL <= 0 {
		cfg.MarkTTL = 48 * time.Hour
	}
	if cfg.Hour < 0 || cfg.Hour > 23 {
		logger.Warn("reminder hour out of range, using default", zap.Int("hour", cfg.Hour))
		cfg.Hour = DefaultReminderHour
	}

	rp := &ReminderProcessor{
		tasks:  tasks,
		users:  users,
		marks:  marks,
		mailer: mailer,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("0 %d * * *", cfg.Hour)
	if _, err := rp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if err := rp.Run(ctx); err != nil {
			rp.logger.Error("reminder run failed", zap.Error(err))
		}
	}); err != nil {
		logger.Error("failed to schedule reminder job", zap.Error(err))
	}

	return rp
}

// Start launches the cron scheduler.
func (rp *ReminderProcessor) Start() {
	if rp == nil || rp.cron == nil {
		return
	}
	rp.cron.Start()
	rp.logger.Info("reminder scheduler started", zap.Int("hour", rp.cfg.Hour))
}

// Stop halts the scheduler and waits for an in-flight run, bounded by ctx.
func (rp *ReminderProcessor) Stop(ctx context.Context) {
	if rp == nil || rp.cron == nil {
		return
	}
	stopCtx := rp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rp.logger.Info("reminder scheduler stopped")
}

// Run executes one reminder batch: select tasks due tomorrow with no
// reminder sent, mail each owner sequentially, and flip the sent flag after a
// successful send. One failed send never aborts the rest of the batch.
func (rp *ReminderProcessor) Run(ctx context.Context) error {
	start, end := domain.ReminderWindow(rp.now())

	due, err := rp.tasks.ListDueBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("select due tasks: %w", err)
	}

	var sent int
	for i := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rp.remind(ctx, &due[i], start) {
			sent++
		}
	}

	rp.logger.Info("reminder run finished",
		zap.Int("due", len(due)),
		zap.Int("sent", sent))
	return nil
}

func (rp *ReminderProcessor) remind(ctx context.Context, task *domain.Task, day time.Time) bool {
	log := rp.logger.With(zap.String("task_id", task.ID))

	claimed, err := rp.claim(ctx, task.ID, day)
	if err != nil {
		// Redis being down degrades to at-least-once, not to silence.
		log.Warn("reminder mark unavailable, proceeding", zap.Error(err))
		claimed = true
	}
	if !claimed {
		// A previous run already mailed this task but died before
		// marking it; just repair the flag.
		log.Info("reminder already claimed, marking only")
		if err := rp.tasks.MarkReminderSent(ctx, task.ID); err != nil {
			log.Error("failed to mark reminder sent", zap.Error(err))
		}
		return false
	}

	owner, err := rp.users.GetByID(ctx, task.UserID)
	if err != nil {
		log.Error("failed to resolve task owner", zap.Error(err))
		rp.release(ctx, task.ID, day)
		return false
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nThis is a gentle reminder that your task %q is due tomorrow.\n\nBest,\nTask Manager",
		owner.Name, task.Title,
	)

	sendCtx, cancel := context.WithTimeout(ctx, rp.cfg.SendTimeout)
	err = rp.mailer.Send(sendCtx, owner.Email, "Task Reminder", body)
	cancel()
	if err != nil {
		log.Error("failed to send reminder", zap.Error(err))
		rp.release(ctx, task.ID, day)
		return false
	}

	if err := rp.tasks.MarkReminderSent(ctx, task.ID); err != nil {
		// The mail went out; the Redis mark keeps a re-run quiet until
		// the flag write succeeds on a later pass.
		log.Error("failed to mark reminder sent", zap.Error(err))
		return true
	}
	return true
}

func (rp *ReminderProcessor) claim(ctx context.Context, taskID string, day time.Time) (bool, error) {
	if rp.marks == nil {
		return true, nil
	}
	return rp.marks.Claim(ctx, taskID, day, rp.cfg.MarkTTL)
}

func (rp *ReminderProcessor) release(ctx context.Context, taskID string, day time.Time) {
	if rp.marks == nil {
		return
	}
	if err := rp.marks.Release(ctx, taskID, day); err != nil {
		rp.logger.Warn("failed to release reminder mark", zap.Error(err))
	}
}
