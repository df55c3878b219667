package report

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestService_Search(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	tests := []struct {
		term string
		want int
	}{
		{"", 2},
		{"lääke", 2},
		{"LÄÄKE B", 1},
		{"0987", 1},
		{"12345", 1},
		{"aspiriini", 0},
	}
	for _, tt := range tests {
		if got := svc.Search(tt.term); len(got) != tt.want {
			t.Errorf("Search(%q) returned %d, want %d", tt.term, len(got), tt.want)
		}
	}
}

func TestService_DecrementFloorsAtZero(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	m, err := svc.Decrement("1234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Quantity != 0 {
		t.Errorf("expected 0, got %d", m.Quantity)
	}
	svc.Increment("1234567890")
	svc.Increment("1234567890")
	m, _ = svc.Decrement("1234567890")
	if m.Quantity != 1 {
		t.Errorf("expected 1, got %d", m.Quantity)
	}
	if _, err := svc.Increment("000"); !errors.Is(err, ErrMedicineNotFound) {
		t.Errorf("expected ErrMedicineNotFound, got %v", err)
	}
}

func TestService_Submit(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "anna"); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("expected ErrEmptyReport, got %v", err)
	}

	svc.Increment("0987654321")
	svc.Increment("0987654321")
	r, err := svc.Submit(ctx, "anna")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Items) != 1 || r.Items[0].Name != "Lääke B" || r.Items[0].Quantity != 2 {
		t.Errorf("unexpected report items: %+v", r.Items)
	}
	for _, m := range svc.Search("") {
		if m.Quantity != 0 {
			t.Errorf("expected counts reset, %s has %d", m.Name, m.Quantity)
		}
	}
	if got := svc.Reports(); len(got) != 1 || got[0].ID != r.ID {
		t.Errorf("expected report to be recorded, got %+v", got)
	}
	if SeedMedicines[1].Quantity != 0 {
		t.Error("seed catalog was mutated")
	}
}
