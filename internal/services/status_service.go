// Package services – StatusService
//
// This file implements the action status projection. ActionDetails is not a
// stored table: every read reduces the action's complete event set into the
// derived flags, so the same events always produce the same details and a
// late-arriving event (a delayed fax callback, an out-of-order webhook) is
// reflected on the very next read with no cache to invalidate.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// finishTypes are the event types that mark an action finished, by any path:
// the generic finish, external-tool handoffs, direct LEO submission (email or
// fax, in any fax state), a self-print download, or a confirmed mail letter.
var finishTypes = map[domain.EventType]struct{}{
	domain.EventFinish:                  {},
	domain.EventFinishExternal:          {},
	domain.EventFinishExternalConfirmed: {},
	domain.EventFinishLEO:               {},
	domain.EventFinishLEOFaxPending:     {},
	domain.EventFinishLEOFaxSent:        {},
	domain.EventFinishLEOFaxFailed:      {},
	domain.EventDownload:                {},
	domain.EventFinishLobConfirm:        {},
}

// externalTypes mark completion via an external state tool.
var externalTypes = map[domain.EventType]struct{}{
	domain.EventFinishExternal:          {},
	domain.EventFinishExternalConfirmed: {},
}

// leoTypes mark a direct submission to a Local Election Official.
var leoTypes = map[domain.EventType]struct{}{
	domain.EventFinishLEO:           {},
	domain.EventFinishLEOFaxPending: {},
	domain.EventFinishLEOFaxSent:    {},
	domain.EventFinishLEOFaxFailed:  {},
}

// Reduce folds an action's events into its derived status. It is a pure
// function: the result depends only on the set of events, never on their
// insertion order. LatestEvent is the maximum created_at across all events,
// which defends against out-of-order arrival.
//
// DownloadCount is nil unless a self-print event exists; with self-print it
// counts every Download event, uncapped and undeduplicated.
func Reduce(actionID string, events []domain.Event) domain.ActionDetails {
	d := domain.ActionDetails{ActionID: actionID}

	var downloads int64
	for _, e := range events {
		if _, ok := finishTypes[e.EventType]; ok {
			d.Finished = true
		}
		if _, ok := externalTypes[e.EventType]; ok {
			d.FinishExternal = true
		}
		if _, ok := leoTypes[e.EventType]; ok {
			d.FinishLEO = true
		}
		switch e.EventType {
		case domain.EventFinishSelfPrint:
			d.SelfPrint = true
		case domain.EventDownload:
			downloads++
		case domain.EventFinishLobConfirm:
			d.FinishLob = true
		}
		if e.CreatedAt.After(d.LatestEvent) {
			d.LatestEvent = e.CreatedAt
		}
	}

	if d.SelfPrint {
		d.DownloadCount = &downloads
	}
	return d
}

// StatusService computes ActionDetails projections on demand.
type StatusService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewStatusService constructs a StatusService.
func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{DB: db}
}

// Status returns the derived details for an action. An action with zero
// events has no projection: ErrNoEvents is returned rather than an all-false
// row, so "unknown" stays distinct from "known, nothing finished".
func (s *StatusService) Status(ctx context.Context, actionID string) (*domain.ActionDetails, error) {
	tr := otel.Tracer("services/StatusService")
	ctx, span := tr.Start(ctx, "Status",
		trace.WithAttributes(attribute.String("action.id", actionID)),
	)
	defer span.End()

	events, err := repo.EventsForAction(ctx, s.DB, actionID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	d := Reduce(actionID, events)
	return &d, nil
}

// LatestEventAt returns the timestamp of the most recent event for an action,
// or the zero time when none exist. Used by reporting consumers that only
// need recency.
func (s *StatusService) LatestEventAt(ctx context.Context, actionID string) (time.Time, error) {
	events, err := repo.EventsForAction(ctx, s.DB, actionID)
	if err != nil || len(events) == 0 {
		return time.Time{}, err
	}
	return Reduce(actionID, events).LatestEvent, nil
}
