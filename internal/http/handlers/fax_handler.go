// Fax gateway callback handler.
//
// This file exposes the endpoint the external fax gateway calls to report
// delivery outcomes:
//   - POST /fax/callback?token=...
//
// The token query parameter correlates the callback with the dispatch record;
// callbacks with an outdated timestamp are acknowledged but ignored, and
// redelivered terminal callbacks are no-ops at the service layer.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/services"
)

// FaxCallbackRequest is the gateway's status report payload.
type FaxCallbackRequest struct {
	// FaxID identifies the dispatch record.
	FaxID string `json:"fax_id" binding:"required" example:"4f0dcb52-5a1e-4ad0-9f3e-6a2d58c90b17"`
	// Status is one of: pending, sent, tmp_fail, perm_fail.
	Status string `json:"status" binding:"required" example:"sent"`
	// Message is the gateway's human-readable detail.
	Message string `json:"message"`
	// Timestamp is when the gateway observed the status.
	Timestamp time.Time `json:"timestamp" binding:"required"`
}

// faxStatuses is the set of status codes the gateway may report.
var faxStatuses = map[domain.FaxStatus]struct{}{
	domain.FaxPending:          {},
	domain.FaxSent:             {},
	domain.FaxTemporaryFailure: {},
	domain.FaxPermanentFailure: {},
}

// FaxGatewayCallback godoc
// @ID          faxGatewayCallback
// @Summary     Apply a fax gateway status callback
// @Description Applies the gateway's delivery report to the dispatch record identified by fax_id and the token query parameter.
// @Tags        Fax
// @Accept      json
// @Produce     json
//
// @Param       token  query  string  true  "Dispatch correlation token"
// @Param       body   body   handlers.FaxCallbackRequest  true  "Gateway status report"
//
// @Success     200  {string}  string  "Applied (or acknowledged as outdated)"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid body or missing token"
// @Failure     403  {object}  handlers.ErrorResponse  "Token mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Fax not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fax/callback [post]
func (h *Handlers) FaxGatewayCallback(c *gin.Context) {
	var req FaxCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	status := domain.FaxStatus(req.Status)
	if _, known := faxStatuses[status]; !known {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown fax status")
		return
	}
	token := c.Query("token")
	if token == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing token")
		return
	}

	err := h.faxSvc.HandleCallback(c.Request.Context(), token, services.FaxCallback{
		FaxID:     req.FaxID,
		Status:    status,
		Message:   req.Message,
		Timestamp: req.Timestamp.UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFaxNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no such fax")
		case errors.Is(err, services.ErrBadFaxToken):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "token is incorrect")
		case errors.Is(err, services.ErrStaleCallback):
			// Acknowledged so the gateway stops redelivering it.
			ok(c, http.StatusOK, gin.H{"detail": "timestamp is outdated; callback ignored"})
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCallbackFailed, err.Error())
		}
		return
	}

	c.Status(http.StatusOK)
}
