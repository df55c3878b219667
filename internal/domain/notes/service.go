// Package notes serves the clinician's personal scratch notes and the
// one-shot toast message carried between screens.
package notes

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

var (
	ErrEmptyNote    = errors.New("note text is required")
	ErrNoteNotFound = errors.New("note not found")
)

type Service struct {
	mu      sync.Mutex
	session *session.Store
	now     func() time.Time
}

func NewService(sess *session.Store) *Service {
	return &Service{session: sess, now: time.Now}
}

func (s *Service) List() []models.Note {
	return s.session.ScratchNotes()
}

func (s *Service) Add(text string) (models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Note{}, ErrEmptyNote
	}
	note := models.Note{ID: uuid.New().String(), Text: text, CreatedAt: s.now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetScratchNotes(append(s.session.ScratchNotes(), note))
	return note, nil
}

func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.session.ScratchNotes()
	for i := range list {
		if list[i].ID == id {
			s.session.SetScratchNotes(append(list[:i], list[i+1:]...))
			return nil
		}
	}
	return ErrNoteNotFound
}

// TakeToast returns the pending toast and clears it.
func (s *Service) TakeToast() (string, bool) {
	return s.session.TakeToast()
}
