package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

var (
	ErrEmptyNote   = errors.New("note text is required")
	ErrMissingID   = errors.New("patient id is required")
	ErrMissingName = errors.New("patient name is required")
)

type Service struct {
	patients *Store
	session  *session.Store
	now      func() time.Time
}

func NewService(patients *Store, sess *session.Store) *Service {
	return &Service{patients: patients, session: sess, now: time.Now}
}

func (s *Service) ListPatients() []models.Patient {
	return s.patients.List()
}

func (s *Service) GetPatient(id string) (models.Patient, error) {
	return s.patients.Get(id)
}

// UpdatePatient stores edited patient info. The patient is created when the
// id is unknown.
func (s *Service) UpdatePatient(p models.Patient) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Name == "" {
		return ErrMissingName
	}
	s.patients.Set(p)
	return nil
}

// Neighbor implements the previous/next buttons of the patient card.
func (s *Service) Neighbor(id string, step int) (models.Patient, error) {
	return s.patients.Neighbor(id, step)
}

func (s *Service) Notes(patientID string) ([]models.Note, error) {
	if _, err := s.patients.Get(patientID); err != nil {
		return nil, err
	}
	return s.session.PatientNotes(patientID), nil
}

// AddNote appends a trimmed note to the patient's note list.
func (s *Service) AddNote(patientID, text string) (models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Note{}, ErrEmptyNote
	}
	if _, err := s.patients.Get(patientID); err != nil {
		return models.Note{}, fmt.Errorf("add note: %w", err)
	}
	note := models.Note{ID: uuid.New().String(), Text: text, CreatedAt: s.now().UTC()}
	notes := append(s.session.PatientNotes(patientID), note)
	s.session.SetPatientNotes(patientID, notes)
	return note, nil
}
