// Package report counts medicine usage during a shift and submits it as a
// usage report.
package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrEmptyReport      = errors.New("add at least one medicine")
)

type Service struct {
	mu        sync.Mutex
	medicines []Medicine
	reports   []UsageReport
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(catalog []Medicine, logger zerolog.Logger) *Service {
	if catalog == nil {
		catalog = SeedMedicines
	}
	return &Service{
		medicines: append([]Medicine(nil), catalog...),
		logger:    logger.With().Str("component", "report").Logger(),
		now:       time.Now,
	}
}

// Search returns medicines whose name (case-insensitive) or barcode contains
// term. An empty term matches everything.
func (s *Service) Search(term string) []Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.TrimSpace(term)
	if term == "" {
		return append([]Medicine(nil), s.medicines...)
	}
	lower := strings.ToLower(term)
	out := make([]Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		if strings.Contains(strings.ToLower(m.Name), lower) || strings.Contains(m.Barcode, term) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Service) Increment(barcode string) (Medicine, error) {
	return s.adjust(barcode, 1)
}

// Decrement lowers the count, stopping at zero.
func (s *Service) Decrement(barcode string) (Medicine, error) {
	return s.adjust(barcode, -1)
}

func (s *Service) adjust(barcode string, delta int) (Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.medicines {
		if s.medicines[i].Barcode != barcode {
			continue
		}
		q := s.medicines[i].Quantity + delta
		if q < 0 {
			q = 0
		}
		s.medicines[i].Quantity = q
		return s.medicines[i], nil
	}
	return Medicine{}, ErrMedicineNotFound
}

// Submit records the medicines with a non-zero count and resets all counts.
func (s *Service) Submit(_ context.Context, by string) (UsageReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var used []Medicine
	for _, m := range s.medicines {
		if m.Quantity > 0 {
			used = append(used, m)
		}
	}
	if len(used) == 0 {
		return UsageReport{}, ErrEmptyReport
	}
	r := UsageReport{
		ID:          uuid.New().String(),
		SubmittedAt: s.now().UTC(),
		SubmittedBy: by,
		Items:       used,
	}
	s.reports = append(s.reports, r)
	for i := range s.medicines {
		s.medicines[i].Quantity = 0
	}

	s.logger.Info().Str("report_id", r.ID).Int("items", len(used)).Str("clinician", by).Msg("usage report submitted")
	return r, nil
}

// Reports returns submitted reports, newest first.
func (s *Service) Reports() []UsageReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UsageReport, 0, len(s.reports))
	for i := len(s.reports) - 1; i >= 0; i-- {
		out = append(out, s.reports[i])
	}
	return out
}
