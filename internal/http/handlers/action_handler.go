// Action HTTP handlers.
//
// This file exposes REST endpoints for the action tracking resources:
//   - POST   /actions                            (start a new action)
//   - GET    /actions/{id}/details               (derived status projection)
//   - GET    /actions/{id}/events                (event log, newest first)
//   - GET    /ballot-requests/{id}/delivery-link (resolved delivery link)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
	"github.com/votehq/turnout-backend/internal/services"
	"github.com/votehq/turnout-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// EventService defines action lifecycle and event tracking operations
// consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type EventService interface {
	// StartAction creates a new action and records its Start event.
	StartAction(ctx context.Context) (*domain.Action, error)
	// Track appends one event to an action's log.
	Track(ctx context.Context, actionID string, eventType domain.EventType) (*domain.Event, error)
	// Events returns an action's events, most recent first.
	Events(ctx context.Context, actionID string, limit int) ([]domain.Event, error)
}

// StatusService computes the derived status projection for an action.
type StatusService interface {
	// Status folds an action's events into its derived details.
	Status(ctx context.Context, actionID string) (*domain.ActionDetails, error)
}

// LinkService resolves the ballot-delivery link for a ballot request.
type LinkService interface {
	// LinkFor returns the delivery link, or "" when none applies.
	LinkFor(ctx context.Context, request *domain.BallotRequest) (string, error)
}

// FaxCallbackService applies asynchronous fax gateway status reports.
type FaxCallbackService interface {
	// HandleCallback validates the token and applies the callback.
	HandleCallback(ctx context.Context, token string, cb services.FaxCallback) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for actions, events, ballot-request links,
// and gateway callbacks. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	db               *gorm.DB
	eventSvc         EventService
	statusSvc        StatusService
	linkSvc          LinkService
	faxSvc           FaxCallbackService
	lobWebhookSecret string
	idemTTL          time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
// db is used for direct ballot-request and idempotency lookups; lobSecret
// signs the letter status webhook; idemTTL bounds how long a replayed
// Idempotency-Key is honored.
func New(db *gorm.DB, eventSvc EventService, statusSvc StatusService, linkSvc LinkService, faxSvc FaxCallbackService, lobSecret string, idemTTL time.Duration) *Handlers {
	return &Handlers{
		db:               db,
		eventSvc:         eventSvc,
		statusSvc:        statusSvc,
		linkSvc:          linkSvc,
		faxSvc:           faxSvc,
		lobWebhookSecret: lobSecret,
		idemTTL:          idemTTL,
	}
}

// clientID extracts the calling client's identifier. The tracking API is
// anonymous: identity comes from the X-Client-ID header when an embedding
// partner chooses to send one, and falls back to "anonymous".
func clientID(c *gin.Context) string {
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Client-ID")); h != "" {
			return h
		}
	}
	return "anonymous"
}

//
// DTOs
//

// StartActionResponse is returned when a new action is created.
type StartActionResponse struct {
	// Action is the new tracking handle (UUID).
	Action string `json:"action" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// ListEventsResponse wraps an action's event log.
type ListEventsResponse struct {
	Action string         `json:"action"`
	Events []domain.Event `json:"events"`
}

// DeliveryLinkResponse carries the resolved ballot-delivery link. URL is the
// empty string when neither a region override nor a statewide link exists.
type DeliveryLinkResponse struct {
	BallotRequest string `json:"ballot_request"`
	URL           string `json:"url"`
}

//
// Handlers
//

// StartAction godoc
// @ID          startAction
// @Summary     Start a new action
// @Description Creates an action tracking handle and records its Start event.
// @Tags        Actions
// @Produce     json
//
// @Success     201  {object}  handlers.StartActionResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /actions [post]
func (h *Handlers) StartAction(c *gin.Context) {
	action, err := h.eventSvc.StartAction(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStartFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, StartActionResponse{Action: action.ID})
}

// GetActionDetails godoc
// @ID          getActionDetails
// @Summary     Get derived action status
// @Description Returns the status projection folded from the action's events.
// @Tags        Actions
// @Produce     json
//
// @Param       id  path  string  true  "Action ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.ActionDetails
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Action unknown or has no events"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /actions/{id}/details [get]
func (h *Handlers) GetActionDetails(c *gin.Context) {
	actionID := c.Param("id")
	if _, err := uuid.Parse(actionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action id must be a UUID")
		return
	}

	details, err := h.statusSvc.Status(c.Request.Context(), actionID)
	if err != nil {
		if errors.Is(err, services.ErrNoEvents) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no events recorded for action")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, details)
}

// ListActionEvents godoc
// @ID          listActionEvents
// @Summary     List an action's events
// @Description Returns the action's event log, most recent first.
// @Tags        Actions
// @Produce     json
//
// @Param       id     path   string  true   "Action ID (UUID)"  format(uuid)
// @Param       limit  query  int     false  "Maximum events to return"  minimum(1) maximum(500)
//
// @Success     200  {object}  handlers.ListEventsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Action not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /actions/{id}/events [get]
func (h *Handlers) ListActionEvents(c *gin.Context) {
	actionID := c.Param("id")
	if _, err := uuid.Parse(actionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action id must be a UUID")
		return
	}

	const maxLimit = 500
	limit := utils.AtoiDefault(c.Query("limit"), 100)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	events, err := h.eventSvc.Events(c.Request.Context(), actionID, limit)
	if err != nil {
		if errors.Is(err, services.ErrActionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListEventsResponse{Action: actionID, Events: events})
}

// GetDeliveryLink godoc
// @ID          getDeliveryLink
// @Summary     Resolve the ballot-delivery link
// @Description Resolves the link for a ballot request: region override first, statewide link second, empty otherwise.
// @Tags        BallotRequests
// @Produce     json
//
// @Param       id  path  string  true  "Ballot request ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.DeliveryLinkResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Ballot request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ballot-requests/{id}/delivery-link [get]
func (h *Handlers) GetDeliveryLink(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ballot request id must be a UUID")
		return
	}

	ctx := c.Request.Context()
	br, err := repo.GetBallotRequest(ctx, h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ballot request not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	url, err := h.linkSvc.LinkFor(ctx, br)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, DeliveryLinkResponse{BallotRequest: id, URL: url})
}
