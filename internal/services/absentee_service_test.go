package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

func newAbsenteeFixture(t *testing.T) (*AbsenteeService, *fakeGateway, *recordingRunner, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	gw := &fakeGateway{}
	runner := &recordingRunner{}
	svc := &AbsenteeService{
		DB: db,
		Fax: &FaxService{
			DB:          db,
			Gateway:     gw,
			Runner:      runner,
			CallbackURL: "https://api.example.org/v1/fax/callback",
		},
		Events:    NewEventService(db),
		WWWOrigin: "https://www.voteamerica.com",
	}
	return svc, gw, runner, db
}

func seedBallotRequest(t *testing.T, db *gorm.DB, withDoc bool) *domain.BallotRequest {
	t.Helper()
	ctx := context.Background()
	a, err := NewEventService(db).StartAction(ctx)
	if err != nil {
		t.Fatalf("start action: %v", err)
	}
	br := &domain.BallotRequest{ActionID: a.ID, State: "FL"}
	if withDoc {
		item, err := repo.CreateStorageItem(ctx, db, "https://files.example.org/application.pdf")
		if err != nil {
			t.Fatalf("create storage item: %v", err)
		}
		br.ResultItemID = &item.ID
	}
	if err := repo.CreateBallotRequest(ctx, db, br); err != nil {
		t.Fatalf("create ballot request: %v", err)
	}
	return br
}

func eventTypes(t *testing.T, db *gorm.DB, actionID string) []domain.EventType {
	t.Helper()
	events, err := repo.EventsForAction(context.Background(), db, actionID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	out := make([]domain.EventType, len(events))
	for i, e := range events {
		out[i] = e.EventType
	}
	return out
}

func hasType(types []domain.EventType, want domain.EventType) bool {
	for _, et := range types {
		if et == want {
			return true
		}
	}
	return false
}

func TestSendLEOFax(t *testing.T) {
	svc, gw, _, db := newAbsenteeFixture(t)
	ctx := context.Background()
	br := seedBallotRequest(t, db, true)

	fax, err := svc.SendLEOFax(ctx, br.ID, "+15558880001")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if fax.OnCompleteTask != TaskLEOFaxSent || fax.OnCompleteTaskArg != br.ID {
		t.Fatalf("fax completion binding = %q %q", fax.OnCompleteTask, fax.OnCompleteTaskArg)
	}
	if len(gw.msgs) != 1 || gw.msgs[0].To != "+15558880001" {
		t.Fatalf("gateway messages = %+v", gw.msgs)
	}
	if !hasType(eventTypes(t, db, br.ActionID), domain.EventFinishLEOFaxPending) {
		t.Fatal("pending event not recorded")
	}
}

func TestSendLEOFax_Errors(t *testing.T) {
	svc, _, _, db := newAbsenteeFixture(t)
	ctx := context.Background()

	br := seedBallotRequest(t, db, true)
	if _, err := svc.SendLEOFax(ctx, br.ID, ""); !errors.Is(err, ErrNoFaxAddress) {
		t.Fatalf("empty number: %v", err)
	}
	if _, err := svc.SendLEOFax(ctx, uuid.NewString(), "+15558880002"); !errors.Is(err, ErrBallotRequestNotFound) {
		t.Fatalf("unknown request: %v", err)
	}

	noDoc := seedBallotRequest(t, db, false)
	if _, err := svc.SendLEOFax(ctx, noDoc.ID, "+15558880003"); err == nil {
		t.Fatal("expected error for request without a generated document")
	}
}

func TestLEOFaxComplete(t *testing.T) {
	svc, _, _, db := newAbsenteeFixture(t)
	ctx := context.Background()

	br := seedBallotRequest(t, db, true)
	if err := svc.LEOFaxComplete(ctx, []any{string(domain.FaxSent), br.ID}); err != nil {
		t.Fatalf("complete sent: %v", err)
	}
	if !hasType(eventTypes(t, db, br.ActionID), domain.EventFinishLEOFaxSent) {
		t.Fatal("sent event not recorded")
	}

	br2 := seedBallotRequest(t, db, true)
	if err := svc.LEOFaxComplete(ctx, []any{string(domain.FaxPermanentFailure), br2.ID}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !hasType(eventTypes(t, db, br2.ActionID), domain.EventFinishLEOFaxFailed) {
		t.Fatal("failed event not recorded")
	}

	if err := svc.LEOFaxComplete(ctx, []any{"sent"}); err == nil {
		t.Fatal("expected error for missing arg")
	}
	if err := svc.LEOFaxComplete(ctx, []any{42, br.ID}); err == nil {
		t.Fatal("expected error for non-string arg")
	}
}

func TestFollowup_SkipsFinishedActions(t *testing.T) {
	svc, _, _, db := newAbsenteeFixture(t)
	ctx := context.Background()

	br := seedBallotRequest(t, db, true)
	if _, err := svc.Events.Track(ctx, br.ActionID, domain.EventFinishSelfPrint); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := svc.Followup(ctx, []any{br.ActionID}); err != nil {
		t.Fatalf("followup: %v", err)
	}

	// FinishExternal comes from the tracking API and does not count as the
	// tool's own finish: the followup still runs without error.
	br2 := seedBallotRequest(t, db, true)
	if _, err := svc.Events.Track(ctx, br2.ActionID, domain.EventFinishExternal); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := svc.Followup(ctx, []any{br2.ActionID}); err != nil {
		t.Fatalf("followup: %v", err)
	}
}

func TestFollowup_NoToolRecord(t *testing.T) {
	svc, _, _, db := newAbsenteeFixture(t)
	ctx := context.Background()

	a, err := svc.Events.StartAction(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Followup(ctx, []any{a.ID}); err != nil {
		t.Fatalf("followup without tool record: %v", err)
	}

	// Registrations are resumable; reminder signups are not. Neither errors.
	reg := &domain.Registration{ID: uuid.NewString(), ActionID: a.ID, State: "FL"}
	if err := db.Create(reg).Error; err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if err := svc.Followup(ctx, []any{a.ID}); err != nil {
		t.Fatalf("followup for registration: %v", err)
	}
}

func TestRegisterTasks(t *testing.T) {
	svc, _, _, _ := newAbsenteeFixture(t)
	reg := NewRegistry()
	svc.RegisterTasks(reg)

	err := reg.Run(context.Background(), "no_such_task", nil)
	if !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	// Registered names dispatch to the handlers (missing args surface the
	// handler's own error, not ErrUnknownTask).
	if err := reg.Run(context.Background(), TaskLEOFaxSent, nil); errors.Is(err, ErrUnknownTask) {
		t.Fatalf("task not registered: %v", err)
	}
	if err := reg.Run(context.Background(), TaskActionFollowup, nil); errors.Is(err, ErrUnknownTask) {
		t.Fatalf("task not registered: %v", err)
	}
}
