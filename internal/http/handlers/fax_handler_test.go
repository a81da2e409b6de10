package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/votehq/turnout-backend/internal/services"
)

func callbackBody(t *testing.T, faxID, status string) []byte {
	t.Helper()
	b, err := json.Marshal(FaxCallbackRequest{
		FaxID:     faxID,
		Status:    status,
		Message:   "gateway detail",
		Timestamp: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestFaxGatewayCallback_Applied(t *testing.T) {
	f := newFixture(t)
	faxID := uuid.NewString()

	w := f.do(t, http.MethodPost, "/fax/callback?token=tok-1", callbackBody(t, faxID, "sent"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if f.fax.got.Token != "tok-1" {
		t.Fatalf("token = %s", f.fax.got.Token)
	}
	cb := f.fax.got.CB
	if cb.FaxID != faxID || string(cb.Status) != "sent" || cb.Message != "gateway detail" {
		t.Fatalf("callback = %+v", cb)
	}
}

func TestFaxGatewayCallback_BadRequests(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/fax/callback?token=tok-1", []byte("{not json"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/fax/callback?token=tok-1", callbackBody(t, uuid.NewString(), "exploded"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status code = %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/fax/callback", callbackBody(t, uuid.NewString(), "sent"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d", w.Code)
	}
}

func TestFaxGatewayCallback_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unknown fax", services.ErrFaxNotFound, http.StatusNotFound},
		{"wrong token", services.ErrBadFaxToken, http.StatusForbidden},
		{"internal", http.ErrAbortHandler, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.fax.err = tc.err

			w := f.do(t, http.MethodPost, "/fax/callback?token=tok", callbackBody(t, uuid.NewString(), "sent"), nil)
			if w.Code != tc.code {
				t.Fatalf("status = %d, want %d", w.Code, tc.code)
			}
		})
	}
}

func TestFaxGatewayCallback_StaleAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.fax.err = services.ErrStaleCallback

	w := f.do(t, http.MethodPost, "/fax/callback?token=tok", callbackBody(t, uuid.NewString(), "sent"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stale callback status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["detail"] != "timestamp is outdated; callback ignored" {
		t.Fatalf("detail = %q", resp["detail"])
	}
}
