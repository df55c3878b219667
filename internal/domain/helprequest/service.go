// Package helprequest tracks requests for assistance raised during visits.
// Every change is published on the help-requests topic so clients can react
// without polling.
package helprequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/websocket"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

var (
	ErrNotFound          = errors.New("help request not found")
	ErrInvalidStatus     = errors.New("invalid help request status")
	ErrInvalidTransition = errors.New("help request is no longer pending")
	ErrEmptyRequest      = errors.New("message, appointmentId or patientId is required")
)

const (
	EventCreated = "help-request.created"
	EventUpdated = "help-request.updated"
)

type Service struct {
	mu      sync.Mutex
	session *session.Store
	events  websocket.EventPublisher
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(sess *session.Store, events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		session: sess,
		events:  events,
		logger:  logger.With().Str("component", "helprequest").Logger(),
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create records a new pending help request.
func (s *Service) Create(ctx context.Context, req models.HelpRequest) (models.HelpRequest, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && req.AppointmentID == "" && req.PatientID == "" {
		return models.HelpRequest{}, ErrEmptyRequest
	}
	now := s.now().UTC()
	req.ID = uuid.New().String()
	req.Status = models.HelpPending
	req.CreatedAt = now
	req.UpdatedAt = now

	s.mu.Lock()
	s.session.SetHelpRequests(append(s.session.HelpRequests(), req))
	s.mu.Unlock()

	s.publish(ctx, EventCreated, req)
	return req, nil
}

// List returns help requests newest first, optionally filtered by status,
// along with the total number of matches.
func (s *Service) List(_ context.Context, status models.HelpStatus, limit, offset int) ([]models.HelpRequest, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	all := s.session.HelpRequests()
	matched := make([]models.HelpRequest, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if status == "" || all[i].Status == status {
			matched = append(matched, all[i])
		}
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *Service) Get(_ context.Context, id string) (models.HelpRequest, error) {
	for _, r := range s.session.HelpRequests() {
		if r.ID == id {
			return r, nil
		}
	}
	return models.HelpRequest{}, ErrNotFound
}

// SetStatus moves a pending request to accepted or declined.
func (s *Service) SetStatus(ctx context.Context, id string, status models.HelpStatus) (models.HelpRequest, error) {
	return s.resolve(ctx, func(r models.HelpRequest) bool { return r.ID == id }, status)
}

// ResolveForAppointment resolves the pending request raised for an
// appointment.
func (s *Service) ResolveForAppointment(ctx context.Context, appointmentID string, status models.HelpStatus) (models.HelpRequest, error) {
	return s.resolve(ctx, func(r models.HelpRequest) bool {
		return r.AppointmentID == appointmentID && r.Status == models.HelpPending
	}, status)
}

func (s *Service) resolve(ctx context.Context, match func(models.HelpRequest) bool, status models.HelpStatus) (models.HelpRequest, error) {
	if status != models.HelpAccepted && status != models.HelpDeclined {
		return models.HelpRequest{}, ErrInvalidStatus
	}

	s.mu.Lock()
	reqs := s.session.HelpRequests()
	idx := -1
	for i := range reqs {
		if match(reqs[i]) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.HelpRequest{}, ErrNotFound
	}
	if reqs[idx].Status != models.HelpPending {
		s.mu.Unlock()
		return models.HelpRequest{}, fmt.Errorf("%w: %s", ErrInvalidTransition, reqs[idx].Status)
	}
	reqs[idx].Status = status
	reqs[idx].UpdatedAt = s.now().UTC()
	updated := reqs[idx]
	s.session.SetHelpRequests(reqs)
	s.mu.Unlock()

	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

func (s *Service) publish(ctx context.Context, typ string, req models.HelpRequest) {
	if s.events == nil {
		return
	}
	evt := websocket.NewEvent(websocket.TopicHelpRequests, typ, req.ID, req)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("help_request_id", req.ID).Msg("failed to publish help request event")
	}
}
