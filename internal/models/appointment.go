package models

// SyntheticKind tags appointments inserted by the help-notification demo.
type SyntheticKind string

const (
	SyntheticNone     SyntheticKind = ""
	SyntheticDemo     SyntheticKind = "demo"
	SyntheticAccepted SyntheticKind = "accepted"
)

// Appointment is a single scheduled visit. Time is a wall-clock "HH:MM" for
// the current day.
type Appointment struct {
	ID         string        `json:"id"`
	Time       string        `json:"time"`
	PatientID  string        `json:"patientId"`
	VisitNotes string        `json:"visitNotes,omitempty"`
	Medication string        `json:"medication,omitempty"`
	Dosage     string        `json:"dosage,omitempty"`
	Completed  bool          `json:"completed,omitempty"`
	Keywords   []string      `json:"keywords,omitempty"`
	Synthetic  SyntheticKind `json:"synthetic,omitempty"`
}

// IsSynthetic reports whether the appointment was inserted by the demo
// lifecycle rather than seeded or created by the clinician.
func (a Appointment) IsSynthetic() bool {
	return a.Synthetic != SyntheticNone
}

// Clone returns a copy that shares no slices with a.
func (a Appointment) Clone() Appointment {
	if a.Keywords != nil {
		a.Keywords = append([]string(nil), a.Keywords...)
	}
	return a
}

// CloneAppointments deep-copies a list. A nil list stays nil.
func CloneAppointments(in []Appointment) []Appointment {
	if in == nil {
		return nil
	}
	out := make([]Appointment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
