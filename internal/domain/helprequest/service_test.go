package helprequest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/websocket"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

// -- Mock Publisher --

type mockPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, evt websocket.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

func newTestService() (*Service, *mockPublisher) {
	pub := &mockPublisher{}
	svc := NewService(session.NewStore(), pub, zerolog.Nop())
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	return svc, pub
}

func TestService_Create(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, models.HelpRequest{AppointmentID: "h-demo", Message: " help needed "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == "" || r.Status != models.HelpPending || r.Message != "help needed" {
		t.Errorf("unexpected request: %+v", r)
	}
	if got := pub.types(); len(got) != 1 || got[0] != EventCreated {
		t.Errorf("expected one created event, got %v", got)
	}
	if pub.events[0].Topic != websocket.TopicHelpRequests {
		t.Errorf("expected help-requests topic, got %s", pub.events[0].Topic)
	}

	if _, err := svc.Create(ctx, models.HelpRequest{}); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("expected ErrEmptyRequest, got %v", err)
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	first, _ := svc.Create(ctx, models.HelpRequest{Message: "first"})
	second, _ := svc.Create(ctx, models.HelpRequest{Message: "second"})
	third, _ := svc.Create(ctx, models.HelpRequest{Message: "third"})
	svc.SetStatus(ctx, second.ID, models.HelpAccepted)

	items, total, err := svc.List(ctx, "", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(items), total)
	}
	if items[0].ID != third.ID || items[1].ID != second.ID {
		t.Errorf("expected newest first, got %s, %s", items[0].Message, items[1].Message)
	}

	items, total, _ = svc.List(ctx, models.HelpPending, 10, 0)
	if total != 2 || items[1].ID != first.ID {
		t.Errorf("expected two pending requests ending with first, got %+v", items)
	}

	items, _, _ = svc.List(ctx, "", 10, 50)
	if len(items) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(items))
	}

	if _, _, err := svc.List(ctx, "bogus", 10, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_SetStatus(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()
	r, _ := svc.Create(ctx, models.HelpRequest{Message: "lift assistance"})

	updated, err := svc.SetStatus(ctx, r.ID, models.HelpDeclined)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.HelpDeclined || !updated.UpdatedAt.After(r.CreatedAt) {
		t.Errorf("unexpected update: %+v", updated)
	}
	if got := pub.types(); got[len(got)-1] != EventUpdated {
		t.Errorf("expected updated event, got %v", got)
	}

	if _, err := svc.SetStatus(ctx, r.ID, models.HelpAccepted); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from terminal state, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, r.ID, models.HelpPending); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for pending target, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, "missing", models.HelpAccepted); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ResolveForAppointment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Create(ctx, models.HelpRequest{AppointmentID: "h-demo", Message: "help needed"})

	r, err := svc.ResolveForAppointment(ctx, "h-demo", models.HelpAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != models.HelpAccepted {
		t.Errorf("expected accepted, got %s", r.Status)
	}
	if _, err := svc.ResolveForAppointment(ctx, "h-demo", models.HelpDeclined); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no pending request left, got %v", err)
	}
}

func TestService_PublishFailureDoesNotFail(t *testing.T) {
	svc, pub := newTestService()
	pub.err = errors.New("hub closed")
	if _, err := svc.Create(context.Background(), models.HelpRequest{Message: "x"}); err != nil {
		t.Errorf("expected publish errors to be logged only, got %v", err)
	}
}
