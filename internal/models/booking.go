package models

import "time"

type Booking struct {
	ID        string    `json:"id"`
	Night     time.Time `json:"night"`
	Room      string    `json:"room"`
	Slot      string    `json:"slot"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NightKey returns the booking's night as the canonical YYYY-MM-DD key.
func (b Booking) NightKey() string {
	return b.Night.Format(DateLayout)
}
