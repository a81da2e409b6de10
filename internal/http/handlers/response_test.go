package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Capture logs from LoggerFrom(c).
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// Simulate RequestID plus a request-scoped logger.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})

	r.POST("/v1/events", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeTrackFailed, "event store unavailable")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeTrackFailed || resp.Message != "event store unavailable" {
		t.Fatalf("unexpected body: %+v", resp)
	}

	// 5xx must land in the request-scoped log at error level.
	logs := buf.String()
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, ErrCodeTrackFailed) {
		t.Fatalf("expected error log with code, got: %s", logs)
	}
}

func Test_fail_4xx_NotLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Set("logger", &logger)
		c.Next()
	})

	// Client mistakes are the caller's problem; they stay out of the error log.
	r.GET("/v1/actions/:id/details", func(c *gin.Context) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/actions/a-1/details", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx unexpectedly logged: %s", buf.String())
	}
}

func Test_Fail_And_SuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-404")
		c.Next()
	})

	// Exported Fail is what the router's NoRoute/NoMethod handlers use.
	r.GET("/v1/actions/:id/events", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
	})

	r.POST("/v1/actions", func(c *gin.Context) {
		ok(c, http.StatusCreated, StartActionResponse{Action: "56c9e4b1-6e92-4f3e-9b0f-2f6f8a11c001"})
	})

	r.DELETE("/v1/scratch", func(c *gin.Context) {
		noContent(c)
	})

	// 404 envelope
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/actions/a-1/events", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json 404: %v", err)
	}
	if er.RequestID != "rid-404" || er.Code != ErrCodeNotFound || er.Message != "action not found" {
		t.Fatalf("unexpected 404 body: %+v", er)
	}

	// ok (201)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/actions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	var started StartActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("json 201: %v", err)
	}
	if started.Action != "56c9e4b1-6e92-4f3e-9b0f-2f6f8a11c001" {
		t.Fatalf("unexpected ok body: %+v", started)
	}

	// noContent (204)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/scratch", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body for 204")
	}
}
