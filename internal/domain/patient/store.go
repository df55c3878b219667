package patient

import (
	"errors"
	"sync"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

var ErrPatientNotFound = errors.New("patient not found")

// SeedPatients is the initial patient list loaded on first use.
var SeedPatients = []models.Patient{
	{ID: "p-1", Name: "Eero Räsänen", Contact: "Kirkonkyläntie 9, Helsinki", Henkilotunnus: "010190-123A"},
	{ID: "p-2", Name: "Sari Lehtinen", Contact: "Koulutie 8, Helsinki", Henkilotunnus: "020280-234B"},
	{ID: "p-3", Name: "Anna Virtanen", Contact: "Keskuskatu 1, Helsinki", Henkilotunnus: "030370-345C"},
	{ID: "p-4", Name: "Mikko Korhonen", Contact: "Rantatie 5, Helsinki", Henkilotunnus: "040460-456D"},
	{ID: "p-5", Name: "Laura Nieminen", Contact: "Puistotie 12, Helsinki", Henkilotunnus: "050550-567E"},
	{ID: "p-6", Name: "Jussi Mäkinen", Contact: "Asemakatu 3, Helsinki", Henkilotunnus: "060640-678F"},
	{ID: "p-7", Name: "Pekka Salmi", Contact: "Raitatie 22, Helsinki", Henkilotunnus: "070730-789G"},
	{ID: "p-8", Name: "Tiina Koskinen", Contact: "Torikatu 7, Helsinki", Henkilotunnus: "080820-890H"},
	{ID: "p-9", Name: "Oona Laakso", Contact: "Kivitie 15, Helsinki", Henkilotunnus: "090910-901J"},
	{ID: "p-10", Name: "Ville Hämäläinen", Contact: "Satamatie 4, Helsinki", Henkilotunnus: "101000-012K"},
}

// Store is the in-memory patient list. It seeds itself lazily so that Reset
// brings back the original patients.
type Store struct {
	mu       sync.RWMutex
	patients []models.Patient
}

func NewStore() *Store {
	return &Store{}
}

// ensureSeededLocked must be called with mu held for writing.
func (s *Store) ensureSeededLocked() {
	if s.patients == nil {
		s.patients = append([]models.Patient(nil), SeedPatients...)
	}
}

// List returns all patients in insertion order.
func (s *Store) List() []models.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	return append([]models.Patient(nil), s.patients...)
}

// Get returns the patient with id.
func (s *Store) Get(id string) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Patient{}, ErrPatientNotFound
}

// Set replaces the patient with the same id, or appends it.
func (s *Store) Set(p models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	for i := range s.patients {
		if s.patients[i].ID == p.ID {
			s.patients[i] = p
			return
		}
	}
	s.patients = append(s.patients, p)
}

// SetAll replaces the whole list. A nil list re-seeds on next access.
func (s *Store) SetAll(list []models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list == nil {
		s.patients = nil
		return
	}
	s.patients = append([]models.Patient{}, list...)
}

// Delete removes the patient with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	for i := range s.patients {
		if s.patients[i].ID == id {
			s.patients = append(s.patients[:i], s.patients[i+1:]...)
			return nil
		}
	}
	return ErrPatientNotFound
}

// Reset drops all changes; the seed is reloaded on next access.
func (s *Store) Reset() {
	s.SetAll(nil)
}

// Neighbor returns the patient step positions away from id, wrapping around
// both ends of the list.
func (s *Store) Neighbor(id string, step int) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	n := len(s.patients)
	for i := range s.patients {
		if s.patients[i].ID == id {
			j := ((i+step)%n + n) % n
			return s.patients[j], nil
		}
	}
	return models.Patient{}, ErrPatientNotFound
}
