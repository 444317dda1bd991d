package models

import "time"

// NightPrice is the derived per-occupant price for one night. Priced is
// false when the night has no occupants: there is nobody to charge, so no
// price exists.
type NightPrice struct {
	Night      time.Time `json:"night"`
	Occupants  int       `json:"occupants"`
	PriceCents int64     `json:"price_cents,omitempty"`
	Priced     bool      `json:"priced"`
}

// PersonTotal is the derived weekly bill for one occupant.
type PersonTotal struct {
	Name       string `json:"name"`
	Nights     int    `json:"nights"`
	TotalCents int64  `json:"total_cents"`
}
