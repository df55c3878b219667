// Package session holds the process-local state shared between screens of
// the visit app: the saved schedule, notes, help requests, the demo cooldown
// and the one-shot toast. Nothing here survives a restart.
package session

import (
	"sync"
	"time"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

// Store is an injectable session store. Getters return copies and setters
// replace whole values, so callers never share slices with the store.
type Store struct {
	mu sync.RWMutex

	current      *models.Appointment
	appointments []models.Appointment
	saved        bool
	patientNotes map[string][]models.Note
	scratch      []models.Note
	helpRequests []models.HelpRequest
	cooldown     *time.Time
	bootstrapped bool
	toast        string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{patientNotes: make(map[string][]models.Note)}
}

// CurrentAppointment returns the appointment the clinician last opened.
func (s *Store) CurrentAppointment() (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Appointment{}, false
	}
	return s.current.Clone(), true
}

// SetCurrentAppointment records the opened appointment; nil clears it.
func (s *Store) SetCurrentAppointment(a *models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a == nil {
		s.current = nil
		return
	}
	c := a.Clone()
	s.current = &c
}

// Appointments returns the saved appointment list. The boolean is false when
// no list has been saved yet, which callers use to decide whether to seed.
func (s *Store) Appointments() ([]models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAppointments(s.appointments), s.saved
}

// SetAppointments replaces the saved appointment list.
func (s *Store) SetAppointments(list []models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = models.CloneAppointments(list)
	if s.appointments == nil {
		s.appointments = []models.Appointment{}
	}
	s.saved = true
}

// PatientNotes returns the notes recorded for a patient.
func (s *Store) PatientNotes(patientID string) []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note(nil), s.patientNotes[patientID]...)
}

// SetPatientNotes replaces the notes recorded for a patient.
func (s *Store) SetPatientNotes(patientID string, notes []models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(notes) == 0 {
		delete(s.patientNotes, patientID)
		return
	}
	s.patientNotes[patientID] = append([]models.Note(nil), notes...)
}

// ScratchNotes returns the clinician's personal note list.
func (s *Store) ScratchNotes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note(nil), s.scratch...)
}

// SetScratchNotes replaces the personal note list.
func (s *Store) SetScratchNotes(notes []models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scratch = append([]models.Note(nil), notes...)
}

// HelpRequests returns all help request entries in insertion order.
func (s *Store) HelpRequests() []models.HelpRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HelpRequest(nil), s.helpRequests...)
}

// SetHelpRequests replaces the help request entries.
func (s *Store) SetHelpRequests(reqs []models.HelpRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.helpRequests = append([]models.HelpRequest(nil), reqs...)
}

// DemoCooldown returns the instant before which no synthetic appointment may
// be inserted.
func (s *Store) DemoCooldown() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cooldown == nil {
		return time.Time{}, false
	}
	return *s.cooldown, true
}

// SetDemoCooldown arms the cooldown.
func (s *Store) SetDemoCooldown(deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldown = &deadline
}

// ClearDemoCooldown removes any armed cooldown.
func (s *Store) ClearDemoCooldown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldown = nil
}

// DemoBootstrapped reports whether the first-run cooldown has been armed.
func (s *Store) DemoBootstrapped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bootstrapped
}

// MarkDemoBootstrapped records that the first-run cooldown was armed.
func (s *Store) MarkDemoBootstrapped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrapped = true
}

// SetToast stores a message to be shown once on the next screen.
func (s *Store) SetToast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toast = msg
}

// TakeToast returns the pending toast message and clears it.
func (s *Store) TakeToast() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.toast
	s.toast = ""
	return msg, msg != ""
}

// Clear drops the saved schedule and current appointment.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.appointments = nil
	s.saved = false
}
