package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/taskify/backend/domain"
)

type stubTaskRepo struct {
	tasks   map[string]*domain.Task
	listErr error
	markErr error
}

func newStubTaskRepo(tasks ...*domain.Task) *stubTaskRepo {
	r := &stubTaskRepo{tasks: make(map[string]*domain.Task)}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *stubTaskRepo) GetByOwner(_ context.Context, id, userID string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.tasks[task.ID] = task
	return task, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.tasks[task.ID] = task
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, _ string) error {
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) ListDueBetween(_ context.Context, start, end time.Time) ([]domain.Task, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Task
	for _, t := range r.tasks {
		if t.ReminderSent {
			continue
		}
		if !t.DueDate.Before(start) && !t.DueDate.After(end) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) MarkReminderSent(_ context.Context, id string) error {
	if r.markErr != nil {
		return r.markErr
	}
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.ReminderSent = true
	return nil
}

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetResetOTP(_ context.Context, _, _ string, _ time.Time) error { return nil }

func (r *stubUserRepo) FindByEmailAndOTP(_ context.Context, _, _ string, _ time.Time) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ResetPassword(_ context.Context, _, _ string) error { return nil }

type stubMarkRepo struct {
	claimed  map[string]bool
	claimErr error
	released []string
}

func newStubMarkRepo() *stubMarkRepo {
	return &stubMarkRepo{claimed: make(map[string]bool)}
}

func (r *stubMarkRepo) key(taskID string, day time.Time) string {
	return taskID + ":" + day.Format("2006-01-02")
}

func (r *stubMarkRepo) Claim(_ context.Context, taskID string, day time.Time, _ time.Duration) (bool, error) {
	if r.claimErr != nil {
		return false, r.claimErr
	}
	k := r.key(taskID, day)
	if r.claimed[k] {
		return false, nil
	}
	r.claimed[k] = true
	return true, nil
}

func (r *stubMarkRepo) Release(_ context.Context, taskID string, day time.Time) error {
	k := r.key(taskID, day)
	delete(r.claimed, k)
	r.released = append(r.released, k)
	return nil
}

type stubMailer struct {
	sent    []string
	bodies  []string
	failFor map[string]bool
}

func (m *stubMailer) Send(_ context.Context, to, _ string, body string) error {
	if m.failFor[to] {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	m.bodies = append(m.bodies, body)
	return nil
}

var testNow = time.Date(2025, time.April, 14, 8, 0, 0, 0, time.UTC)

func dueTomorrow(id, userID string) *domain.Task {
	return &domain.Task{
		ID:      id,
		UserID:  userID,
		Title:   "task " + id,
		Status:  domain.StatusPending,
		DueDate: testNow.Add(24 * time.Hour),
	}
}

func newTestProcessor(tasks *stubTaskRepo, users *stubUserRepo, marks *stubMarkRepo, mailer *stubMailer) *ReminderProcessor {
	rp := NewReminderProcessor(tasks, users, marks, mailer, nil, ReminderConfig{Hour: 8})
	rp.now = func() time.Time { return testNow }
	return rp
}

func singleUser() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
	}}
}

func TestNewReminderProcessor_OutOfRangeHourStillSchedules(t *testing.T) {
	t.Parallel()

	for _, hour := range []int{-1, 24, 99} {
		rp := NewReminderProcessor(newStubTaskRepo(), singleUser(), newStubMarkRepo(), &stubMailer{}, nil, ReminderConfig{Hour: hour})
		if rp.cfg.Hour != DefaultReminderHour {
			t.Fatalf("hour %d: got %d want %d", hour, rp.cfg.Hour, DefaultReminderHour)
		}
		if len(rp.cron.Entries()) != 1 {
			t.Fatalf("hour %d: expected one scheduled job, got %d", hour, len(rp.cron.Entries()))
		}
	}
}

func TestRun_MailsTasksDueTomorrow(t *testing.T) {
	t.Parallel()

	tasks := newStubTaskRepo(dueTomorrow("t1", "user-1"))
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), newStubMarkRepo(), mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
		t.Fatalf("expected one mail to the owner, got %v", mailer.sent)
	}
	if !strings.Contains(mailer.bodies[0], "Alice") || !strings.Contains(mailer.bodies[0], "task t1") {
		t.Fatalf("reminder body missing owner or title: %q", mailer.bodies[0])
	}
	if !tasks.tasks["t1"].ReminderSent {
		t.Fatalf("reminder flag not set after send")
	}
}

func TestRun_SkipsTasksOutsideWindow(t *testing.T) {
	t.Parallel()

	later := dueTomorrow("t2", "user-1")
	later.DueDate = testNow.Add(3 * 24 * time.Hour)
	today := dueTomorrow("t3", "user-1")
	today.DueDate = testNow

	tasks := newStubTaskRepo(later, today)
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), newStubMarkRepo(), mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail, got %v", mailer.sent)
	}
}

func TestRun_SkipsAlreadySent(t *testing.T) {
	t.Parallel()

	sent := dueTomorrow("t4", "user-1")
	sent.ReminderSent = true

	tasks := newStubTaskRepo(sent)
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), newStubMarkRepo(), mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("already-sent task was mailed again: %v", mailer.sent)
	}
}

func TestRun_SendFailureContinuesBatch(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
		"user-2": {ID: "user-2", Name: "Bob", Email: "bob@example.com"},
	}}
	tasks := newStubTaskRepo(dueTomorrow("t5", "user-1"), dueTomorrow("t6", "user-2"))
	mailer := &stubMailer{failFor: map[string]bool{"alice@example.com": true}}
	marks := newStubMarkRepo()
	rp := newTestProcessor(tasks, users, marks, mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(mailer.sent) != 1 || mailer.sent[0] != "bob@example.com" {
		t.Fatalf("expected the batch to continue past a failure, got %v", mailer.sent)
	}
	if tasks.tasks["t5"].ReminderSent {
		t.Fatalf("failed send must not set the reminder flag")
	}
	if !tasks.tasks["t6"].ReminderSent {
		t.Fatalf("successful send must set the reminder flag")
	}
	if len(marks.released) != 1 {
		t.Fatalf("failed send should release its mark, released=%v", marks.released)
	}
}

func TestRun_ClaimedMarkSkipsMailButRepairsFlag(t *testing.T) {
	t.Parallel()

	task := dueTomorrow("t7", "user-1")
	tasks := newStubTaskRepo(task)
	marks := newStubMarkRepo()
	start, _ := domain.ReminderWindow(testNow)
	marks.claimed[marks.key("t7", start)] = true

	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), marks, mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("claimed task must not be mailed again: %v", mailer.sent)
	}
	if !task.ReminderSent {
		t.Fatalf("claimed task should still get its flag repaired")
	}
}

func TestRun_MarkStoreDownStillMails(t *testing.T) {
	t.Parallel()

	tasks := newStubTaskRepo(dueTomorrow("t8", "user-1"))
	marks := newStubMarkRepo()
	marks.claimErr = errors.New("redis down")
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), marks, mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("mark store outage must not suppress reminders, sent=%v", mailer.sent)
	}
}

func TestRun_MissingOwnerSkipsTask(t *testing.T) {
	t.Parallel()

	tasks := newStubTaskRepo(dueTomorrow("t9", "ghost"))
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), newStubMarkRepo(), mailer)

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("task without a resolvable owner was mailed: %v", mailer.sent)
	}
	if tasks.tasks["t9"].ReminderSent {
		t.Fatalf("unresolved owner must not set the reminder flag")
	}
}

func TestRun_ListFailurePropagates(t *testing.T) {
	t.Parallel()

	tasks := newStubTaskRepo()
	tasks.listErr = errors.New("db down")
	rp := newTestProcessor(tasks, singleUser(), newStubMarkRepo(), &stubMailer{})

	if err := rp.Run(context.Background()); err == nil {
		t.Fatalf("expected error when the due query fails")
	}
}

func TestRun_NoMarkStore(t *testing.T) {
	t.Parallel()

	tasks := newStubTaskRepo(dueTomorrow("t10", "user-1"))
	mailer := &stubMailer{}
	rp := NewReminderProcessor(tasks, singleUser(), nil, mailer, nil, ReminderConfig{Hour: 8})
	rp.now = func() time.Time { return testNow }

	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected the reminder to go out without a mark store, sent=%v", mailer.sent)
	}
}

func TestRun_SendAndMarkAreIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	task := dueTomorrow("t11", "user-1")
	tasks := newStubTaskRepo(task)
	tasks.markErr = fmt.Errorf("write lost")
	marks := newStubMarkRepo()
	mailer := &stubMailer{}
	rp := newTestProcessor(tasks, singleUser(), marks, mailer)

	// First run: mail goes out, the flag write is lost.
	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail on the first run, got %v", mailer.sent)
	}

	// Second run inside the same window: the mark suppresses a duplicate.
	tasks.markErr = nil
	if err := rp.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("duplicate reminder sent on re-run: %v", mailer.sent)
	}
	if !task.ReminderSent {
		t.Fatalf("second run should repair the reminder flag")
	}
}
