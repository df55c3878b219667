package models

import "testing"

func TestAppointment_IsSynthetic(t *testing.T) {
	tests := []struct {
		kind SyntheticKind
		want bool
	}{
		{SyntheticNone, false},
		{SyntheticDemo, true},
		{SyntheticAccepted, true},
	}
	for _, tt := range tests {
		a := Appointment{ID: "x", Synthetic: tt.kind}
		if got := a.IsSynthetic(); got != tt.want {
			t.Errorf("IsSynthetic(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestCloneAppointments_DoesNotShareKeywords(t *testing.T) {
	in := []Appointment{{ID: "1", Keywords: []string{"help"}}}
	out := CloneAppointments(in)
	out[0].Keywords[0] = "changed"
	if in[0].Keywords[0] != "help" {
		t.Errorf("expected original keyword to be untouched, got %q", in[0].Keywords[0])
	}
	if CloneAppointments(nil) != nil {
		t.Error("expected nil clone of nil list")
	}
}

func TestHelpStatus_Valid(t *testing.T) {
	for _, s := range []HelpStatus{HelpPending, HelpAccepted, HelpDeclined} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if HelpStatus("cancelled").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
