// Package services – Scheduler
//
// This file implements the delayed task dispatcher: a persisted "run this at
// or after time T" primitive plus the periodic sweep that delivers due tasks.
// The polite variants push user-facing work into a window that is never
// before 17:00 UTC (noon US Eastern, 6am Hawaii) and never in the past, so
// reminders do not land in the middle of anyone's night.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// politeHourUTC is the earliest hour (UTC) at which polite tasks may run.
// 1700 UTC == 12pm ET == 9am PT == 6am HT.
const politeHourUTC = 17

// TaskRunner executes a named task with its decoded argument list. The
// scheduler hands claimed tasks to the runner and otherwise stays out of the
// execution business: a runner failure is logged and reported, never retried
// by the sweep.
type TaskRunner interface {
	Run(ctx context.Context, name string, args []any) error
}

// Scheduler persists and delivers delayed tasks.
type Scheduler struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Runner executes delivered tasks.
	Runner TaskRunner
	// Interval is the expected gap between sweeps; each sweep stops shortly
	// before its successor is due so a backlog cannot starve the next run.
	Interval time.Duration
	// Now returns the current time; tests fix it for deterministic windows.
	Now func() time.Time
}

// NewScheduler constructs a Scheduler sweeping at the given interval.
func NewScheduler(db *gorm.DB, runner TaskRunner, interval time.Duration) *Scheduler {
	return &Scheduler{
		DB:       db,
		Runner:   runner,
		Interval: interval,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Schedule persists a task descriptor due at dueAt. There is no side effect
// beyond the insert.
func (s *Scheduler) Schedule(ctx context.Context, dueAt time.Time, taskName string, args ...any) (*domain.DelayedTask, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return repo.CreateDelayedTask(ctx, s.DB, taskName, string(encoded), dueAt)
}

// SchedulePolite schedules a task for the next polite moment: immediately
// when the polite window is already open today, otherwise at the start of
// today's window. The due time is never in the past.
//
// The state hint is accepted for a future per-state window; the current
// policy is a single UTC window for all states.
func (s *Scheduler) SchedulePolite(ctx context.Context, state, taskName string, args ...any) (*domain.DelayedTask, error) {
	now := s.Now().UTC()
	when := now
	if now.Hour() < politeHourUTC {
		when = time.Date(now.Year(), now.Month(), now.Day(), politeHourUTC, 0, 0, 0, time.UTC)
	}
	return s.Schedule(ctx, when, taskName, args...)
}

// ScheduleDaysLaterPolite schedules a task at the polite hour the given
// number of days from today.
func (s *Scheduler) ScheduleDaysLaterPolite(ctx context.Context, state string, days int, taskName string, args ...any) (*domain.DelayedTask, error) {
	day := s.Now().UTC().AddDate(0, 0, days)
	when := time.Date(day.Year(), day.Month(), day.Day(), politeHourUTC, 0, 0, 0, time.UTC)
	return s.Schedule(ctx, when, taskName, args...)
}

// ScheduleTomorrowPolite schedules a task at tomorrow's polite hour.
func (s *Scheduler) ScheduleTomorrowPolite(ctx context.Context, state, taskName string, args ...any) (*domain.DelayedTask, error) {
	return s.ScheduleDaysLaterPolite(ctx, state, 1, taskName, args...)
}

// DeliverDueTasks claims and runs every undelivered task whose due time has
// passed, returning the number of tasks delivered. Each task is claimed with
// a conditional update before dispatch, so concurrent sweeps never deliver
// the same row twice. The sweep stops slightly before the next sweep is
// expected; whatever remains is picked up next cycle.
//
// A task that fails is logged and left claimed: retry is the task's own
// responsibility, not the sweep's.
func (s *Scheduler) DeliverDueTasks(ctx context.Context) (int, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "DeliverDueTasks")
	defer span.End()

	now := s.Now().UTC()
	deadline := now.Add(s.Interval - 5*time.Second)

	due, err := repo.DueTasks(ctx, s.DB, now, 0)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, t := range due {
		if !s.Now().UTC().Before(deadline) {
			break
		}
		claimed, err := repo.ClaimTask(ctx, s.DB, t.ID, s.Now())
		if err != nil {
			return delivered, err
		}
		if !claimed {
			// Another sweep got there first.
			continue
		}

		var args []any
		if t.Args != "" {
			if err := json.Unmarshal([]byte(t.Args), &args); err != nil {
				log.Error().Err(err).Str("task", t.TaskName).Str("id", t.ID).Msg("delayed task has undecodable args")
				continue
			}
		}
		if err := s.Runner.Run(ctx, t.TaskName, args); err != nil {
			log.Error().Err(err).Str("task", t.TaskName).Str("id", t.ID).Msg("delayed task failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}
