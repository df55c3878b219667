package models

// Patient is a home-care client visited by the clinician.
type Patient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Henkilotunnus string `json:"henkilotunnus,omitempty"`
}
