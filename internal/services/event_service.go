// Package services – EventService
//
// This file implements event tracking: starting new actions and appending
// events to the append-only log. Validation is deliberately thin — the event
// type must belong to the closed enumeration and the action must exist — and
// nothing here ever mutates or deletes a recorded event.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// EventService manages the action/event tracking boundary.
type EventService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// StartAction creates a fresh tracking handle and records its Start event.
// Every tool workflow calls this when a user opens the flow.
func (s *EventService) StartAction(ctx context.Context) (*domain.Action, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "StartAction")
	defer span.End()

	var action *domain.Action
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := repo.CreateAction(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := repo.CreateEvent(ctx, tx, a.ID, domain.EventStart); err != nil {
			return err
		}
		action = a
		return nil
	})
	return action, err
}

// Track appends one event to an action's log. Unknown event types are
// rejected before anything is written; unknown actions map to
// ErrActionNotFound.
func (s *EventService) Track(ctx context.Context, actionID string, eventType domain.EventType) (*domain.Event, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Track",
		trace.WithAttributes(
			attribute.String("action.id", actionID),
			attribute.String("event.type", string(eventType)),
		),
	)
	defer span.End()

	if !eventType.Valid() {
		return nil, ErrUnknownEventType
	}
	if _, err := repo.GetAction(ctx, s.DB, actionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, err
	}
	return repo.CreateEvent(ctx, s.DB, actionID, eventType)
}

// Events returns an action's events, most recent first.
func (s *EventService) Events(ctx context.Context, actionID string, limit int) ([]domain.Event, error) {
	if ok, err := repo.ActionExists(ctx, s.DB, actionID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrActionNotFound
	}
	return repo.ListEvents(ctx, s.DB, actionID, limit)
}

// SourceItem returns the tool record owning an action, or nil when the
// action has not yet been claimed by a tool.
func (s *EventService) SourceItem(ctx context.Context, actionID string) (domain.ToolRecord, error) {
	return repo.GetSourceItem(ctx, s.DB, actionID)
}
