package session

import (
	"testing"
	"time"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

func TestStore_AppointmentsCopied(t *testing.T) {
	s := NewStore()
	if _, ok := s.Appointments(); ok {
		t.Fatal("expected no saved appointments on a new store")
	}

	list := []models.Appointment{{ID: "1", Time: "08:00", Keywords: []string{"a"}}}
	s.SetAppointments(list)
	list[0].Time = "09:00"
	list[0].Keywords[0] = "b"

	got, ok := s.Appointments()
	if !ok {
		t.Fatal("expected saved appointments")
	}
	if got[0].Time != "08:00" || got[0].Keywords[0] != "a" {
		t.Errorf("store shares memory with caller: %+v", got[0])
	}

	got[0].Time = "10:00"
	again, _ := s.Appointments()
	if again[0].Time != "08:00" {
		t.Errorf("getter leaked internal slice, got %s", again[0].Time)
	}
}

func TestStore_EmptyListIsSaved(t *testing.T) {
	s := NewStore()
	s.SetAppointments(nil)
	got, ok := s.Appointments()
	if !ok {
		t.Fatal("expected an explicitly saved empty list to count as saved")
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d", len(got))
	}
}

func TestStore_Cooldown(t *testing.T) {
	s := NewStore()
	if _, ok := s.DemoCooldown(); ok {
		t.Fatal("expected no cooldown")
	}
	deadline := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.SetDemoCooldown(deadline)
	got, ok := s.DemoCooldown()
	if !ok || !got.Equal(deadline) {
		t.Fatalf("expected %v, got %v (%v)", deadline, got, ok)
	}
	s.ClearDemoCooldown()
	if _, ok := s.DemoCooldown(); ok {
		t.Error("expected cooldown to be cleared")
	}
}

func TestStore_ToastIsOneShot(t *testing.T) {
	s := NewStore()
	if _, ok := s.TakeToast(); ok {
		t.Fatal("expected no toast")
	}
	s.SetToast("visit completed")
	msg, ok := s.TakeToast()
	if !ok || msg != "visit completed" {
		t.Fatalf("expected toast, got %q (%v)", msg, ok)
	}
	if _, ok := s.TakeToast(); ok {
		t.Error("expected toast to be consumed")
	}
}

func TestStore_PatientNotes(t *testing.T) {
	s := NewStore()
	s.SetPatientNotes("p-1", []models.Note{{ID: "n1", Text: "ok"}})
	if got := s.PatientNotes("p-1"); len(got) != 1 {
		t.Fatalf("expected 1 note, got %d", len(got))
	}
	if got := s.PatientNotes("p-2"); len(got) != 0 {
		t.Errorf("expected no notes for p-2, got %d", len(got))
	}
	s.SetPatientNotes("p-1", nil)
	if got := s.PatientNotes("p-1"); len(got) != 0 {
		t.Errorf("expected notes to be cleared, got %d", len(got))
	}
}

func TestStore_CurrentAndClear(t *testing.T) {
	s := NewStore()
	s.SetCurrentAppointment(&models.Appointment{ID: "3"})
	s.SetAppointments([]models.Appointment{{ID: "3"}})
	s.MarkDemoBootstrapped()

	if a, ok := s.CurrentAppointment(); !ok || a.ID != "3" {
		t.Fatalf("expected current appointment 3, got %+v", a)
	}

	s.Clear()
	if _, ok := s.CurrentAppointment(); ok {
		t.Error("expected current appointment to be cleared")
	}
	if _, ok := s.Appointments(); ok {
		t.Error("expected appointments to be cleared")
	}
	if !s.DemoBootstrapped() {
		t.Error("expected bootstrap flag to survive Clear")
	}
}
