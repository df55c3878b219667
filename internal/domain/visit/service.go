// Package visit owns the daily visit schedule: ordering and editing of
// appointments, selection of the current visit, and the help-notification
// demo that inserts and retires synthetic appointments on a cooldown.
package visit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/klukovki23/healthcare-on-the-go/internal/domain/patient"
	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/websocket"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrNotConfirmed  = errors.New("confirmation required")
	ErrInvalidTime   = errors.New("time must be in HH:MM format")
	ErrNoDemo        = errors.New("no pending help notification")
	ErrNotAccepted   = errors.New("help notification must be accepted before completing")
	ErrAlreadyActive = errors.New("a help notification is already active")
)

// Schedule events published on the schedule topic.
const (
	EventUpdated          = "schedule.updated"
	EventHighlightChanged = "schedule.highlight-changed"
	EventDeleted          = "schedule.appointment-deleted"
	EventRestored         = "schedule.appointment-restored"
	EventCooldownArmed    = "schedule.cooldown-armed"
	EventDemoInserted     = "schedule.help-inserted"
	EventHelpAccepted     = "schedule.help-accepted"
	EventHelpDeclined     = "schedule.help-declined"
	EventVisitCompleted   = "schedule.visit-completed"
)

// SeedAppointments is the schedule loaded when no list has been saved yet.
var SeedAppointments = []models.Appointment{
	{ID: "1", Time: "08:00", PatientID: "p-1"},
	{ID: "2", Time: "08:30", PatientID: "p-2"},
	{ID: "3", Time: "09:00", PatientID: "p-3"},
	{ID: "4", Time: "09:30", PatientID: "p-4"},
	{ID: "5", Time: "10:00", PatientID: "p-5"},
	{ID: "6", Time: "10:20", PatientID: "p-6"},
	{ID: "7", Time: "11:00", PatientID: "p-7"},
	{ID: "8", Time: "11:40", PatientID: "p-2"},
	{ID: "9", Time: "12:00", PatientID: "p-8"},
	{ID: "10", Time: "12:40", PatientID: "p-1"},
	{ID: "11", Time: "14:00", PatientID: "p-9"},
	{ID: "12", Time: "14:30", PatientID: "p-3"},
	{ID: "13", Time: "14:50", PatientID: "p-10"},
}

// HelpRequests records the help request raised for the demo appointment.
type HelpRequests interface {
	Create(ctx context.Context, req models.HelpRequest) (models.HelpRequest, error)
	ResolveForAppointment(ctx context.Context, appointmentID string, status models.HelpStatus) (models.HelpRequest, error)
}

// Options tune the schedule and the help-notification demo.
type Options struct {
	Lead           time.Duration
	UndoWindow     time.Duration
	DemoEnabled    bool
	BootstrapDelay time.Duration
	Cooldown       time.Duration
	Location       *time.Location
}

func DefaultOptions() Options {
	return Options{
		Lead:           DefaultLead,
		UndoWindow:     2200 * time.Millisecond,
		DemoEnabled:    true,
		BootstrapDelay: 60 * time.Second,
		Cooldown:       2 * time.Minute,
		Location:       time.Local,
	}
}

// Phase is the help-notification lifecycle state derived from the session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseCooldown Phase = "cooldown"
	PhaseDemo     Phase = "demo"
	PhaseAccepted Phase = "accepted"
)

// UndoNotice describes the pending undo offer after a delete.
type UndoNotice struct {
	AppointmentID string    `json:"appointmentId"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// State is a snapshot of the schedule as shown to the clinician.
type State struct {
	Appointments  []models.Appointment `json:"appointments"`
	Current       string               `json:"current"`
	Phase         Phase                `json:"phase"`
	CooldownUntil *time.Time           `json:"cooldownUntil,omitempty"`
	HelpAlert     bool                 `json:"helpAlert"`
	EditMode      bool                 `json:"editMode"`
	Undo          *UndoNotice          `json:"undo,omitempty"`
}

// Edit carries the fields a clinician may change on an appointment. Nil
// fields are left untouched.
type Edit struct {
	Time       *string `json:"time"`
	VisitNotes *string `json:"visitNotes"`
	Medication *string `json:"medication"`
	Dosage     *string `json:"dosage"`
}

type undoSlot struct {
	item    models.Appointment
	index   int
	expires time.Time
	// demo patient removed together with a demo row
	patient *models.Patient
}

// Service serializes every read-modify-write of the appointment list.
type Service struct {
	mu       sync.Mutex
	session  *session.Store
	patients *patient.Store
	help     HelpRequests
	events   websocket.EventPublisher
	logger   zerolog.Logger
	opts     Options
	now      func() time.Time

	highlight string
	editMode  bool
	undo      *undoSlot
	wake      chan struct{}
}

func NewService(
	sess *session.Store,
	patients *patient.Store,
	help HelpRequests,
	events websocket.EventPublisher,
	opts Options,
	logger zerolog.Logger,
) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		session:  sess,
		patients: patients,
		help:     help,
		events:   events,
		logger:   logger.With().Str("component", "visit").Logger(),
		opts:     opts,
		now:      time.Now,
		wake:     make(chan struct{}, 1),
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the current time in the schedule's location.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockLocked()
}

func (s *Service) clockLocked() time.Time {
	return s.now().In(s.opts.Location)
}

// Wake signals whenever the cooldown deadline changes.
func (s *Service) Wake() <-chan struct{} {
	return s.wake
}

// NextDeadline returns the armed cooldown deadline, if any.
func (s *Service) NextDeadline() (time.Time, bool) {
	return s.session.DemoCooldown()
}

func (s *Service) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick evaluates the help-notification lifecycle and recomputes the current
// visit. It is driven by the runner and by every schedule read.
func (s *Service) Tick(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clockLocked()
	list := s.loadLocked()
	list, evt, subject := s.evaluateLocked(ctx, list, now)
	if evt != "" {
		return s.saveLocked(ctx, list, now, evt, subject)
	}

	prev := s.highlight
	s.refreshHighlightLocked(list, now)
	st := s.stateLocked(list, now)
	if s.highlight != prev {
		s.publish(ctx, EventHighlightChanged, s.highlight, st)
	}
	return st
}

// Update applies an edit and re-sorts the whole list by time.
func (s *Service) Update(ctx context.Context, id string, edit Edit) (models.Appointment, error) {
	if edit.Time != nil {
		if _, ok := ParseClock(*edit.Time); !ok {
			return models.Appointment{}, ErrInvalidTime
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx := indexOf(list, id)
	if idx < 0 {
		return models.Appointment{}, ErrNotFound
	}
	a := &list[idx]
	if edit.Time != nil {
		a.Time = *edit.Time
	}
	if edit.VisitNotes != nil {
		a.VisitNotes = *edit.VisitNotes
	}
	if edit.Medication != nil {
		a.Medication = *edit.Medication
	}
	if edit.Dosage != nil {
		a.Dosage = *edit.Dosage
	}
	updated := a.Clone()

	s.saveLocked(ctx, SortByTime(list), s.clockLocked(), EventUpdated, id)
	return updated, nil
}

// Delete removes an appointment and keeps it in the single undo slot,
// replacing any earlier one.
func (s *Service) Delete(ctx context.Context, id string, confirm bool) (UndoNotice, error) {
	if !confirm {
		return UndoNotice{}, ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx := indexOf(list, id)
	if idx < 0 {
		return UndoNotice{}, ErrNotFound
	}
	item := list[idx]
	list = append(list[:idx], list[idx+1:]...)

	now := s.clockLocked()
	s.undo = &undoSlot{item: item, index: idx, expires: now.Add(s.opts.UndoWindow)}
	if item.Synthetic == models.SyntheticDemo {
		if p, err := s.patients.Get(DemoPatient.ID); err == nil {
			s.undo.patient = &p
		}
		s.removeDemoPatientLocked()
		s.resolveHelp(ctx, models.HelpDeclined)
	}

	s.saveLocked(ctx, list, now, EventDeleted, id)
	s.logger.Info().Str("appointment_id", id).Int("index", idx).Msg("appointment deleted")
	return UndoNotice{AppointmentID: id, ExpiresAt: s.undo.expires}, nil
}

// Undo restores the last deleted appointment at its original position,
// clamped to the current list length. It reports false once the undo window
// has closed.
func (s *Service) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clockLocked()
	slot := s.undo
	if slot == nil {
		return false, nil
	}
	if now.After(slot.expires) {
		s.undo = nil
		return false, nil
	}

	list := s.loadLocked()
	if slot.item.IsSynthetic() {
		// The slot stays buffered until the window closes.
		if hasSynthetic(list) {
			return false, ErrAlreadyActive
		}
		s.session.ClearDemoCooldown()
		s.notify()
	}
	s.undo = nil
	if slot.item.Synthetic == models.SyntheticDemo {
		if slot.patient != nil {
			s.patients.Set(*slot.patient)
		} else {
			s.ensureDemoPatientLocked()
		}
		s.raiseHelp(ctx)
	}
	list = insertAt(list, slot.index, slot.item)

	s.saveLocked(ctx, list, now, EventRestored, slot.item.ID)
	return true, nil
}

// Move places an appointment at index without re-sorting.
func (s *Service) Move(ctx context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx := indexOf(list, id)
	if idx < 0 {
		return ErrNotFound
	}
	item := list[idx]
	list = append(list[:idx], list[idx+1:]...)
	list = insertAt(list, index, item)

	s.saveLocked(ctx, list, s.clockLocked(), EventUpdated, id)
	return nil
}

// SetCurrent records the appointment the clinician opened.
func (s *Service) SetCurrent(id string) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.loadLocked()
	idx := indexOf(list, id)
	if idx < 0 {
		return models.Appointment{}, ErrNotFound
	}
	s.session.SetCurrentAppointment(&list[idx])
	return list[idx].Clone(), nil
}

// Current returns the appointment last opened.
func (s *Service) Current() (models.Appointment, bool) {
	return s.session.CurrentAppointment()
}

// SetEditMode freezes the current-visit highlight while on. Turning it off
// recomputes the highlight immediately.
func (s *Service) SetEditMode(ctx context.Context, on bool) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editMode = on
	now := s.clockLocked()
	list := s.loadLocked()
	s.refreshHighlightLocked(list, now)
	st := s.stateLocked(list, now)
	s.publish(ctx, EventUpdated, "", st)
	return st
}

// loadLocked returns the saved list, seeding it on first use.
func (s *Service) loadLocked() []models.Appointment {
	list, saved := s.session.Appointments()
	if !saved {
		list = models.CloneAppointments(SeedAppointments)
		s.session.SetAppointments(list)
	}
	return list
}

func (s *Service) saveLocked(ctx context.Context, list []models.Appointment, now time.Time, evt, subject string) State {
	s.session.SetAppointments(list)
	s.refreshHighlightLocked(list, now)
	st := s.stateLocked(list, now)
	s.publish(ctx, evt, subject, st)
	return st
}

func (s *Service) refreshHighlightLocked(list []models.Appointment, now time.Time) {
	if s.editMode {
		return
	}
	s.highlight = SelectCurrent(list, now, s.opts.Lead)
}

func (s *Service) stateLocked(list []models.Appointment, now time.Time) State {
	deadline, armed := s.session.DemoCooldown()
	st := State{
		Appointments: list,
		Current:      s.highlight,
		Phase:        phaseOf(list, armed),
		EditMode:     s.editMode,
	}
	if armed {
		st.CooldownUntil = &deadline
	}
	st.HelpAlert = st.Phase == PhaseDemo || s.hasPendingHelp()
	if s.undo != nil {
		if now.After(s.undo.expires) {
			s.undo = nil
		} else {
			st.Undo = &UndoNotice{AppointmentID: s.undo.item.ID, ExpiresAt: s.undo.expires}
		}
	}
	return st
}

func (s *Service) hasPendingHelp() bool {
	for _, r := range s.session.HelpRequests() {
		if r.Status == models.HelpPending {
			return true
		}
	}
	return false
}

func (s *Service) publish(ctx context.Context, typ, subject string, st State) {
	if s.events == nil {
		return
	}
	evt := websocket.NewEvent(websocket.TopicSchedule, typ, subject, st)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("event", typ).Msg("failed to publish schedule event")
	}
}

func phaseOf(list []models.Appointment, cooldownArmed bool) Phase {
	for _, a := range list {
		switch a.Synthetic {
		case models.SyntheticDemo:
			return PhaseDemo
		case models.SyntheticAccepted:
			return PhaseAccepted
		}
	}
	if cooldownArmed {
		return PhaseCooldown
	}
	return PhaseIdle
}

func hasSynthetic(list []models.Appointment) bool {
	for _, a := range list {
		if a.IsSynthetic() {
			return true
		}
	}
	return false
}

func indexOf(list []models.Appointment, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// insertAt inserts a at index, clamped to [0, len(list)].
func insertAt(list []models.Appointment, index int, a models.Appointment) []models.Appointment {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, models.Appointment{})
	copy(list[index+1:], list[index:])
	list[index] = a
	return list
}

func findSynthetic(list []models.Appointment, kind models.SyntheticKind) (int, error) {
	for i := range list {
		if list[i].Synthetic == kind {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no %s appointment: %w", kind, ErrNotFound)
}
