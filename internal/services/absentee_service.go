// Package services – AbsenteeService
//
// This file implements the LEO fax submission flow for absentee ballot
// requests: sending the generated application to the Local Election
// Official's fax line, recording the pending event, and completing the event
// trail when the gateway reports the terminal status. It also carries the
// post-signup followup task, which dispatches on the concrete tool record
// type to build the right resume link.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// AbsenteeService coordinates ballot-request submission paths.
type AbsenteeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Fax sends the generated application document.
	Fax *FaxService
	// Events records the submission trail on the owning action.
	Events *EventService
	// WWWOrigin is the public site origin used in resume links.
	WWWOrigin string
}

// SendLEOFax dispatches a ballot request's generated document to the given
// fax number and records FinishLEOFaxPending on the owning action. The fax
// completion task finishes the trail with sent or failed once the gateway
// reports back.
func (s *AbsenteeService) SendLEOFax(ctx context.Context, ballotRequestID, faxNumber string) (*domain.Fax, error) {
	tr := otel.Tracer("services/AbsenteeService")
	ctx, span := tr.Start(ctx, "SendLEOFax",
		trace.WithAttributes(attribute.String("ballot_request.id", ballotRequestID)),
	)
	defer span.End()

	if faxNumber == "" {
		return nil, ErrNoFaxAddress
	}
	br, err := repo.GetBallotRequest(ctx, s.DB, ballotRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBallotRequestNotFound
		}
		return nil, err
	}
	if br.ResultItemID == nil {
		return nil, fmt.Errorf("ballot request %s has no generated document", br.ID)
	}
	item, err := repo.GetStorageItem(ctx, s.DB, *br.ResultItemID)
	if err != nil {
		return nil, err
	}

	fax, err := s.Fax.Send(ctx, item, faxNumber, TaskLEOFaxSent, br.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Events.Track(ctx, br.ActionID, domain.EventFinishLEOFaxPending); err != nil {
		return nil, err
	}
	return fax, nil
}

// LEOFaxComplete is the fax on-complete task: args are (status, ballot
// request id). It appends the terminal fax event to the request's action.
func (s *AbsenteeService) LEOFaxComplete(ctx context.Context, args []any) error {
	status, err := stringArg(args, 0)
	if err != nil {
		return err
	}
	brID, err := stringArg(args, 1)
	if err != nil {
		return err
	}

	br, err := repo.GetBallotRequest(ctx, s.DB, brID)
	if err != nil {
		return err
	}

	eventType := domain.EventFinishLEOFaxFailed
	if domain.FaxStatus(status) == domain.FaxSent {
		eventType = domain.EventFinishLEOFaxSent
	}
	_, err = s.Events.Track(ctx, br.ActionID, eventType)
	return err
}

// Followup is the delayed post-signup task: args are (action id). It looks
// up the owning tool record and logs the resume link a notification would
// carry. Dispatch is on the record's concrete type, not on a type-name
// string.
func (s *AbsenteeService) Followup(ctx context.Context, args []any) error {
	actionID, err := stringArg(args, 0)
	if err != nil {
		return err
	}

	// Skip the followup when the user already finished by any path the tool
	// itself records. FinishExternal is excluded: it arrives via the tracking
	// API and does not imply the tool's own finish ran.
	done, err := repo.HasEventOfType(ctx, s.DB, actionID, []domain.EventType{
		domain.EventFinishSelfPrint,
		domain.EventFinishLobConfirm,
		domain.EventFinishLEO,
		domain.EventFinish,
		domain.EventFinishLEOFaxPending,
	})
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	item, err := repo.GetSourceItem(ctx, s.DB, actionID)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	var what, url string
	switch rec := item.(type) {
	case domain.BallotRequest:
		what = "requesting your absentee ballot"
		url = s.WWWOrigin + "/vote-by-mail/"
	case domain.Registration:
		what = "registering to vote"
		url = fmt.Sprintf("%s/register-to-vote/resume/?uuid=%s", s.WWWOrigin, rec.ID)
	default:
		// Reminder signups and lookups have no resumable form.
		return nil
	}

	log.Info().Str("action", actionID).Str("tool", string(item.Tool())).
		Str("resume_url", url).Msgf("followup: user did not finish %s", what)
	return nil
}

// RegisterTasks binds this service's task handlers into the registry.
func (s *AbsenteeService) RegisterTasks(reg *Registry) {
	reg.Register(TaskLEOFaxSent, s.LEOFaxComplete)
	reg.Register(TaskActionFollowup, s.Followup)
}
