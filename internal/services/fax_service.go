// Package services – FaxService
//
// This file implements outbound fax dispatch. A dispatch record is created
// PENDING before anything leaves the process; the external gateway reports
// the outcome with an asynchronous callback correlated by an opaque token.
// Three send modes exist:
//
//   - normal: the message goes to the gateway queue with the real number;
//   - override: a configured destination replaces the real one in the queued
//     message (and its grouping key), while the stored record keeps the
//     caller's address — used on staging so test faxes reach a test machine;
//   - disabled: nothing is queued and a SENT callback is synthesized
//     immediately, with the same contract as a real one.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// FaxMessage is the payload enqueued to the external fax gateway.
type FaxMessage struct {
	FaxID       string `json:"fax_id"`
	To          string `json:"to"`
	PDFURL      string `json:"pdf_url"`
	CallbackURL string `json:"callback_url"`
}

// FaxGateway publishes messages to the external gateway queue. GroupKey
// serializes deliveries to the same destination line.
type FaxGateway interface {
	Publish(ctx context.Context, msg FaxMessage, groupKey string) error
}

// FaxCallback is the gateway's asynchronous status report.
type FaxCallback struct {
	FaxID     string           `json:"fax_id"`
	Status    domain.FaxStatus `json:"status"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// FaxService sends faxes and applies gateway callbacks.
type FaxService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway is the external queue; unused when Disable is set.
	Gateway FaxGateway
	// Runner executes the on-complete task once a terminal status lands.
	Runner TaskRunner
	// CallbackURL is the base URL the gateway calls back; the per-dispatch
	// token is appended as a query parameter.
	CallbackURL string
	// Disable suppresses real sends (non-production environments).
	Disable bool
	// OverrideDest, when set with Disable, reroutes queued messages to a
	// fixed test destination instead of suppressing them.
	OverrideDest string
}

// Send creates a PENDING dispatch for the document and hands it to the
// gateway (or synthesizes a SENT callback in disabled mode). The returned
// record always carries the caller's nominal destination.
func (s *FaxService) Send(ctx context.Context, item *domain.StorageItem, to, onCompleteTask, onCompleteTaskArg string) (*domain.Fax, error) {
	tr := otel.Tracer("services/FaxService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("storage_item.id", item.ID)),
	)
	defer span.End()

	fax, err := repo.CreateFax(ctx, s.DB, item.ID, to, onCompleteTask, onCompleteTaskArg)
	if err != nil {
		return nil, err
	}

	callbackURL := s.CallbackURL + "?token=" + fax.Token

	sendIt := true
	faxTo := to
	if s.Disable {
		if s.OverrideDest != "" {
			faxTo = s.OverrideDest
		} else {
			sendIt = false
		}
	}

	if sendIt {
		msg := FaxMessage{
			FaxID:       fax.ID,
			To:          faxTo,
			PDFURL:      item.FileURL,
			CallbackURL: callbackURL,
		}
		if err := s.Gateway.Publish(ctx, msg, faxTo); err != nil {
			return nil, err
		}
		return fax, nil
	}

	log.Warn().Str("to", to).Str("pdf", item.FileURL).
		Msg("fax sending is disabled and no override destination is set; simulating delivery")

	err = s.applyCallback(ctx, fax, FaxCallback{
		FaxID:     fax.ID,
		Status:    domain.FaxSent,
		Message:   "Simulated fax successful",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return repo.GetFax(ctx, s.DB, fax.ID)
}

// HandleCallback validates and applies a gateway callback. The token must
// match the dispatch record; a callback older than the recorded status is
// acknowledged with ErrStaleCallback and changes nothing; a callback for an
// already-terminal record is a logged no-op (gateways redeliver).
func (s *FaxService) HandleCallback(ctx context.Context, token string, cb FaxCallback) error {
	tr := otel.Tracer("services/FaxService")
	ctx, span := tr.Start(ctx, "HandleCallback",
		trace.WithAttributes(
			attribute.String("fax.id", cb.FaxID),
			attribute.String("fax.status", string(cb.Status)),
		),
	)
	defer span.End()

	fax, err := repo.GetFax(ctx, s.DB, cb.FaxID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrFaxNotFound
		}
		return err
	}
	if !fax.ValidateToken(token) {
		return ErrBadFaxToken
	}
	if fax.StatusAt != nil && cb.Timestamp.Before(*fax.StatusAt) {
		return ErrStaleCallback
	}
	return s.applyCallback(ctx, fax, cb)
}

// applyCallback transitions the record and fires the on-complete task. The
// transition is conditional on the record being non-terminal, so a
// redelivered terminal callback affects zero rows and the task never fires
// twice. A temporary failure is recorded but does not complete the dispatch:
// the gateway will call again.
func (s *FaxService) applyCallback(ctx context.Context, fax *domain.Fax, cb FaxCallback) error {
	applied, err := repo.TransitionFax(ctx, s.DB, fax.ID, cb.Status, cb.Message, cb.Timestamp)
	if err != nil {
		return err
	}
	if !applied {
		log.Info().Str("fax", fax.ID).Str("status", string(cb.Status)).
			Msg("callback for already-terminal fax ignored")
		return nil
	}

	if cb.Status != domain.FaxTemporaryFailure && fax.OnCompleteTask != "" {
		args := []any{string(cb.Status), fax.OnCompleteTaskArg}
		if err := s.Runner.Run(ctx, fax.OnCompleteTask, args); err != nil {
			log.Error().Err(err).Str("task", fax.OnCompleteTask).Str("fax", fax.ID).
				Msg("fax on-complete task failed")
		}
	}
	return nil
}
