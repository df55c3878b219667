package report

import "time"

// Medicine is a catalog entry with the quantity used during the current shift.
type Medicine struct {
	Name     string `json:"name"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// UsageReport is a submitted record of medicines used.
type UsageReport struct {
	ID          string     `json:"id"`
	SubmittedAt time.Time  `json:"submittedAt"`
	SubmittedBy string     `json:"submittedBy,omitempty"`
	Items       []Medicine `json:"items"`
}

// SeedMedicines is the catalog loaded at startup.
var SeedMedicines = []Medicine{
	{Name: "Lääke A", Barcode: "1234567890"},
	{Name: "Lääke B", Barcode: "0987654321"},
}
