// Letter-status webhook handler.
//
// This file exposes the endpoint the mail vendor calls as a letter moves
// through the postal system:
//   - POST /letters/{action}/status
//
// Requests are authenticated with an HMAC-SHA256 signature over
// "timestamp.body" (base64-encoded) carried in the Lob-Signature header.
// Letter lifecycle events map onto the action's event log; unrecognized
// letter events are acknowledged and dropped.
package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/services"
)

// letterEvents maps the vendor's letter lifecycle codes onto action events.
var letterEvents = map[string]domain.EventType{
	"letter.mailed":                 domain.EventLobMailed,
	"letter.processed_for_delivery": domain.EventLobProcessedForDelivery,
	"letter.re-routed":              domain.EventLobRerouted,
	"letter.returned_to_sender":     domain.EventLobReturned,
}

// letterStatusPayload is the slice of the vendor webhook body we consume.
type letterStatusPayload struct {
	EventType struct {
		ID string `json:"id"`
	} `json:"event_type"`
}

// validLetterSignature checks the webhook HMAC: base64(HMAC-SHA256(secret,
// timestamp + "." + body)) must equal the signature header.
func validLetterSignature(secret, timestamp string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// LetterStatusWebhook godoc
// @ID          letterStatusWebhook
// @Summary     Apply a letter-status webhook
// @Description Records the mail vendor's letter lifecycle event on the action's event log.
// @Tags        Letters
// @Accept      json
// @Produce     json
//
// @Param       action                   path    string  true  "Action ID (UUID)"  format(uuid)
// @Param       Lob-Signature            header  string  true  "base64 HMAC-SHA256 of timestamp.body"
// @Param       Lob-Signature-Timestamp  header  string  true  "Timestamp the signature covers"
//
// @Success     200  {string}  string  "Recorded (or acknowledged and dropped)"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Signature mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Action not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /letters/{action}/status [post]
func (h *Handlers) LetterStatusWebhook(c *gin.Context) {
	actionID := c.Param("action")
	if _, err := uuid.Parse(actionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action must be a UUID")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}

	timestamp := c.GetHeader("Lob-Signature-Timestamp")
	signature := c.GetHeader("Lob-Signature")
	if !validLetterSignature(h.lobWebhookSecret, timestamp, body, signature) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "bad letter signature")
		return
	}

	var payload letterStatusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	eventType, known := letterEvents[payload.EventType.ID]
	if !known {
		// Vendors send event kinds we do not track; acknowledge and drop.
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.eventSvc.Track(c.Request.Context(), actionID, eventType); err != nil {
		if errors.Is(err, services.ErrActionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeTrackFailed, err.Error())
		return
	}

	c.Status(http.StatusOK)
}
