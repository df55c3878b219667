package visit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/klukovki23/healthcare-on-the-go/internal/domain/helprequest"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/patient"
	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

const (
	DemoAppointmentID = "h-demo"
	AcceptedIDPrefix  = "h-accepted-"
	DemoVisitNote     = "help needed"
	HelpKeyword       = "help"
	CompletedToast    = "visit completed"
)

// DemoPatient is the synthetic patient attached to the demo appointment.
var DemoPatient = models.Patient{
	ID:      "p-demo",
	Name:    "Demo Asiakas",
	Contact: "Apua tarvitaan",
}

// evaluateLocked advances the lifecycle by one step. It returns the possibly
// changed list and, when something changed, the event to publish.
func (s *Service) evaluateLocked(ctx context.Context, list []models.Appointment, now time.Time) ([]models.Appointment, string, string) {
	if !s.opts.DemoEnabled || hasSynthetic(list) {
		return list, "", ""
	}

	deadline, armed := s.session.DemoCooldown()
	if !armed {
		delay := s.opts.Cooldown
		if !s.session.DemoBootstrapped() {
			delay = s.opts.BootstrapDelay
			s.session.MarkDemoBootstrapped()
		}
		s.armCooldownLocked(now.Add(delay))
		return list, EventCooldownArmed, ""
	}
	if now.Before(deadline) {
		return list, "", ""
	}
	return s.insertDemoLocked(ctx, list, now), EventDemoInserted, DemoAppointmentID
}

// insertDemoLocked places the demo appointment immediately before the visit
// reported as current, or at the head when there is none. In edit mode that
// is the frozen highlight.
func (s *Service) insertDemoLocked(ctx context.Context, list []models.Appointment, now time.Time) []models.Appointment {
	s.ensureDemoPatientLocked()

	anchor := s.highlight
	if !s.editMode {
		anchor = SelectCurrent(list, now, s.opts.Lead)
	}
	idx := indexOf(list, anchor)
	if idx < 0 {
		idx = 0
	}
	demo := models.Appointment{
		ID:         DemoAppointmentID,
		Time:       FormatClock(now),
		PatientID:  DemoPatient.ID,
		VisitNotes: DemoVisitNote,
		Synthetic:  models.SyntheticDemo,
	}
	list = insertAt(list, idx, demo)

	s.session.ClearDemoCooldown()
	s.notify()
	s.raiseHelp(ctx)

	s.logger.Info().
		Str("appointment_id", DemoAppointmentID).
		Int("index", idx).
		Str("state", string(PhaseDemo)).
		Msg("help notification inserted")
	return list
}

func (s *Service) armCooldownLocked(deadline time.Time) {
	s.session.SetDemoCooldown(deadline)
	s.notify()
	s.logger.Info().
		Time("deadline", deadline).
		Str("state", string(PhaseCooldown)).
		Msg("help notification cooldown armed")
}

// Accept turns the demo appointment into an accepted help visit at the same
// position. No cooldown is armed until the visit is completed.
func (s *Service) Accept(ctx context.Context, confirm bool) (models.Appointment, error) {
	if !confirm {
		return models.Appointment{}, ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx, err := findSynthetic(list, models.SyntheticDemo)
	if err != nil {
		return models.Appointment{}, ErrNoDemo
	}

	now := s.clockLocked()
	demo := list[idx]
	accepted := models.Appointment{
		ID:        AcceptedIDPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		Time:      demo.Time,
		PatientID: demo.PatientID,
		Keywords:  []string{HelpKeyword},
		Synthetic: models.SyntheticAccepted,
	}
	list[idx] = accepted
	s.session.ClearDemoCooldown()
	s.notify()
	s.resolveHelp(ctx, models.HelpAccepted)

	s.saveLocked(ctx, list, now, EventHelpAccepted, accepted.ID)
	s.logger.Info().
		Str("appointment_id", accepted.ID).
		Str("state", string(PhaseAccepted)).
		Msg("help notification accepted")
	return accepted.Clone(), nil
}

// Decline removes the demo appointment and the demo patient and arms a new
// cooldown.
func (s *Service) Decline(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx, err := findSynthetic(list, models.SyntheticDemo)
	if err != nil {
		return ErrNoDemo
	}
	list = append(list[:idx], list[idx+1:]...)
	s.removeDemoPatientLocked()

	now := s.clockLocked()
	s.armCooldownLocked(now.Add(s.opts.Cooldown))
	s.resolveHelp(ctx, models.HelpDeclined)

	s.saveLocked(ctx, list, now, EventHelpDeclined, DemoAppointmentID)
	s.logger.Info().Str("appointment_id", DemoAppointmentID).Msg("help notification declined")
	return nil
}

// Complete finishes a visit from the patient view. An accepted help visit is
// removed and a new cooldown armed; a regular visit is marked completed.
func (s *Service) Complete(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx := indexOf(list, id)
	if idx < 0 {
		return State{}, ErrNotFound
	}

	now := s.clockLocked()
	switch list[idx].Synthetic {
	case models.SyntheticDemo:
		return State{}, ErrNotAccepted
	case models.SyntheticAccepted:
		list = append(list[:idx], list[idx+1:]...)
		s.armCooldownLocked(now.Add(s.opts.Cooldown))
	default:
		list[idx].Completed = true
	}
	s.session.SetToast(CompletedToast)

	st := s.saveLocked(ctx, list, now, EventVisitCompleted, id)
	s.logger.Info().Str("appointment_id", id).Msg("visit completed")
	return st, nil
}

func (s *Service) ensureDemoPatientLocked() {
	if _, err := s.patients.Get(DemoPatient.ID); errors.Is(err, patient.ErrPatientNotFound) {
		s.patients.Set(DemoPatient)
	}
}

func (s *Service) removeDemoPatientLocked() {
	if err := s.patients.Delete(DemoPatient.ID); err != nil && !errors.Is(err, patient.ErrPatientNotFound) {
		s.logger.Warn().Err(err).Msg("failed to remove demo patient")
	}
}

// raiseHelp opens a pending help request for the demo row.
func (s *Service) raiseHelp(ctx context.Context) {
	if s.help == nil {
		return
	}
	_, err := s.help.Create(ctx, models.HelpRequest{
		AppointmentID: DemoAppointmentID,
		PatientID:     DemoPatient.ID,
		Requester:     DemoPatient.Name,
		Message:       DemoVisitNote,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record help request")
	}
}

// resolveHelp settles the pending help request raised for the demo row.
func (s *Service) resolveHelp(ctx context.Context, status models.HelpStatus) {
	if s.help == nil {
		return
	}
	_, err := s.help.ResolveForAppointment(ctx, DemoAppointmentID, status)
	if err != nil && !errors.Is(err, helprequest.ErrNotFound) {
		s.logger.Warn().Err(err).Str("status", string(status)).Msg("failed to resolve help request")
	}
}
