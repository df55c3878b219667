package models

import "time"

// HelpStatus is the state of a help request.
type HelpStatus string

const (
	HelpPending  HelpStatus = "pending"
	HelpAccepted HelpStatus = "accepted"
	HelpDeclined HelpStatus = "declined"
)

// Valid reports whether s is one of the known statuses.
func (s HelpStatus) Valid() bool {
	switch s {
	case HelpPending, HelpAccepted, HelpDeclined:
		return true
	}
	return false
}

// HelpRequest is a request for assistance raised for a visit or patient.
type HelpRequest struct {
	ID            string     `json:"id"`
	AppointmentID string     `json:"appointmentId,omitempty"`
	PatientID     string     `json:"patientId,omitempty"`
	Requester     string     `json:"requester,omitempty"`
	Message       string     `json:"message,omitempty"`
	Status        HelpStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
