// Event tracking HTTP handler.
//
// This file exposes the anonymous event ingestion endpoint:
//   - POST /events  (append one event to an action's log)
//
// The endpoint is the write side of the tracking boundary: it accepts an
// action id and an event-type code, rejects anything outside the closed
// enumeration, and never mutates or deletes recorded events. Clients sending
// an Idempotency-Key get replay protection: a retried request inside the TTL
// is acknowledged with the stored result instead of a second event.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/http/middleware"
	"github.com/votehq/turnout-backend/internal/repo"
	"github.com/votehq/turnout-backend/internal/services"
)

// TrackEventRequest is the JSON payload for recording an event.
type TrackEventRequest struct {
	// Action is the tracking handle the event belongs to.
	Action string `json:"action" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// EventType is the wire-level event code (e.g. "FinishPrint").
	EventType string `json:"event_type" binding:"required" example:"FinishExternal"`
}

// TrackEventResponse echoes the recorded event.
type TrackEventResponse struct {
	Action    string `json:"action"`
	EventType string `json:"event_type"`
	EventID   string `json:"event_id"`
}

// TrackEvent godoc
// @ID          trackEvent
// @Summary     Record an event
// @Description Appends one event to an action's log. Event types outside the closed enumeration are rejected.
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       body             body    handlers.TrackEventRequest  true   "Event payload"
// @Param       Idempotency-Key  header  string                      false  "Retry-safety key; a retried request returns the original result"
//
// @Success     201  {object}  handlers.TrackEventResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid body or unknown event type"
// @Failure     404  {object}  handlers.ErrorResponse  "Action not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /events [post]
func (h *Handlers) TrackEvent(c *gin.Context) {
	var req TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, err := uuid.Parse(req.Action); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action must be a UUID")
		return
	}

	// Idempotency (replay path): if the client retries with a key we have
	// already honored, short-circuit with the stored result instead of
	// appending a second event.
	client := clientID(c)
	idemKey := trackIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(c.Request.Context(), h.db, client, req.Action, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, rec.Status, TrackEventResponse{
				Action:    rec.ActionID,
				EventType: req.EventType,
				EventID:   rec.EventID,
			})
			return
		}
	}

	ev, err := h.eventSvc.Track(c.Request.Context(), req.Action, domain.EventType(req.EventType))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownEventType):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown event type")
		case errors.Is(err, services.ErrActionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeTrackFailed, err.Error())
		}
		return
	}

	// Idempotency (store path): best effort. A failed insert must not fail
	// the request; the worst case is that a retry appends a duplicate event.
	if idemKey != "" && h.db != nil {
		ttl := h.idemTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		_, _ = repo.CreateIdempotency(c.Request.Context(), h.db, client, ev.ActionID, idemKey, ev.ID, http.StatusCreated, ttl)
	}

	ok(c, http.StatusCreated, TrackEventResponse{
		Action:    ev.ActionID,
		EventType: string(ev.EventType),
		EventID:   ev.ID,
	})
}

// trackIdempotencyKey reads the caller's Idempotency-Key, preferring a key the
// validator middleware already checked and stashed on the context.
func trackIdempotencyKey(c *gin.Context) string {
	if k, okk := middleware.GetIdempotencyKey(c); okk && k != "" {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}
