package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
	"github.com/votehq/turnout-backend/internal/services"
)

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:action_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ---------- service stubs ----------

type stubEventSvc struct {
	startAction *domain.Action
	startErr    error
	trackEvent  *domain.Event
	trackErr    error
	events      []domain.Event
	eventsErr   error

	tracked []struct {
		ActionID  string
		EventType domain.EventType
	}
	gotLimit int
}

func (s *stubEventSvc) StartAction(context.Context) (*domain.Action, error) {
	return s.startAction, s.startErr
}

func (s *stubEventSvc) Track(_ context.Context, actionID string, eventType domain.EventType) (*domain.Event, error) {
	s.tracked = append(s.tracked, struct {
		ActionID  string
		EventType domain.EventType
	}{actionID, eventType})
	return s.trackEvent, s.trackErr
}

func (s *stubEventSvc) Events(_ context.Context, _ string, limit int) ([]domain.Event, error) {
	s.gotLimit = limit
	return s.events, s.eventsErr
}

type stubStatusSvc struct {
	details *domain.ActionDetails
	err     error
}

func (s *stubStatusSvc) Status(context.Context, string) (*domain.ActionDetails, error) {
	return s.details, s.err
}

type stubLinkSvc struct {
	url string
	err error
}

func (s *stubLinkSvc) LinkFor(context.Context, *domain.BallotRequest) (string, error) {
	return s.url, s.err
}

type stubFaxSvc struct {
	err error
	got struct {
		Token string
		CB    services.FaxCallback
	}
}

func (s *stubFaxSvc) HandleCallback(_ context.Context, token string, cb services.FaxCallback) error {
	s.got.Token = token
	s.got.CB = cb
	return s.err
}

// ---------- harness ----------

type handlerFixture struct {
	db     *gorm.DB
	events *stubEventSvc
	status *stubStatusSvc
	links  *stubLinkSvc
	fax    *stubFaxSvc
	router *gin.Engine
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		db:     newHandlerDB(t),
		events: &stubEventSvc{},
		status: &stubStatusSvc{},
		links:  &stubLinkSvc{},
		fax:    &stubFaxSvc{},
	}
	h := New(f.db, f.events, f.status, f.links, f.fax, "test-lob-secret", time.Hour)

	r := gin.New()
	r.POST("/actions", h.StartAction)
	r.GET("/actions/:id/details", h.GetActionDetails)
	r.GET("/actions/:id/events", h.ListActionEvents)
	r.POST("/events", h.TrackEvent)
	r.GET("/ballot-requests/:id/delivery-link", h.GetDeliveryLink)
	r.POST("/fax/callback", h.FaxGatewayCallback)
	r.POST("/letters/:action/status", h.LetterStatusWebhook)
	f.router = r
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ---------- tests ----------

func TestStartAction_Created(t *testing.T) {
	f := newFixture(t)
	f.events.startAction = &domain.Action{ID: uuid.NewString(), CreatedAt: time.Now()}

	w := f.do(t, http.MethodPost, "/actions", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp StartActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Action != f.events.startAction.ID {
		t.Fatalf("action = %s", resp.Action)
	}
}

func TestStartAction_Error(t *testing.T) {
	f := newFixture(t)
	f.events.startErr = fmt.Errorf("db is down")

	w := f.do(t, http.MethodPost, "/actions", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeStartFailed {
		t.Fatalf("code = %s", resp.Code)
	}
}

func TestGetActionDetails(t *testing.T) {
	f := newFixture(t)
	downloads := int64(2)
	actionID := uuid.NewString()
	f.status.details = &domain.ActionDetails{
		ActionID:      actionID,
		Finished:      true,
		SelfPrint:     true,
		DownloadCount: &downloads,
	}

	w := f.do(t, http.MethodGet, "/actions/"+actionID+"/details", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp domain.ActionDetails
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ActionID != actionID || !resp.Finished || resp.DownloadCount == nil || *resp.DownloadCount != 2 {
		t.Fatalf("details = %+v", resp)
	}
}

func TestGetActionDetails_Errors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/actions/not-a-uuid/details", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid status = %d", w.Code)
	}

	f.status.err = services.ErrNoEvents
	w = f.do(t, http.MethodGet, "/actions/"+uuid.NewString()+"/details", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no events status = %d", w.Code)
	}
}

func TestListActionEvents(t *testing.T) {
	f := newFixture(t)
	actionID := uuid.NewString()
	f.events.events = []domain.Event{
		{ID: uuid.NewString(), ActionID: actionID, EventType: domain.EventStart},
	}

	w := f.do(t, http.MethodGet, "/actions/"+actionID+"/events", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if f.events.gotLimit != 100 {
		t.Fatalf("default limit = %d", f.events.gotLimit)
	}
	var resp ListEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Action != actionID || len(resp.Events) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestListActionEvents_LimitClamp(t *testing.T) {
	f := newFixture(t)
	actionID := uuid.NewString()

	f.do(t, http.MethodGet, "/actions/"+actionID+"/events?limit=9999", nil, nil)
	if f.events.gotLimit != 500 {
		t.Fatalf("clamped limit = %d", f.events.gotLimit)
	}
	f.do(t, http.MethodGet, "/actions/"+actionID+"/events?limit=-3", nil, nil)
	if f.events.gotLimit != 1 {
		t.Fatalf("floor limit = %d", f.events.gotLimit)
	}
	f.do(t, http.MethodGet, "/actions/"+actionID+"/events?limit=garbage", nil, nil)
	if f.events.gotLimit != 100 {
		t.Fatalf("unparseable limit = %d", f.events.gotLimit)
	}
}

func TestListActionEvents_NotFound(t *testing.T) {
	f := newFixture(t)
	f.events.eventsErr = services.ErrActionNotFound

	w := f.do(t, http.MethodGet, "/actions/"+uuid.NewString()+"/events", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetDeliveryLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := repo.CreateAction(ctx, f.db)
	if err != nil {
		t.Fatalf("create action: %v", err)
	}
	br := &domain.BallotRequest{ActionID: a.ID, State: "FL"}
	if err := repo.CreateBallotRequest(ctx, f.db, br); err != nil {
		t.Fatalf("create ballot request: %v", err)
	}
	f.links.url = "https://county.example.org/vbm"

	w := f.do(t, http.MethodGet, "/ballot-requests/"+br.ID+"/delivery-link", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp DeliveryLinkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BallotRequest != br.ID || resp.URL != "https://county.example.org/vbm" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestGetDeliveryLink_Errors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/ballot-requests/not-a-uuid/delivery-link", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid status = %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/ballot-requests/"+uuid.NewString()+"/delivery-link", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown request status = %d", w.Code)
	}
}
