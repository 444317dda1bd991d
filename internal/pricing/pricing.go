// Package pricing derives per-night and per-person costs from the current
// booking set. Everything here is a pure function of the bookings and the
// fixed week configuration; all arithmetic is in integer cents.
package pricing

import (
	"fmt"
	"sort"
	"strings"

	"couchage/internal/calendar"
	"couchage/internal/models"
)

type Config struct {
	TotalWeeklyCents int64
	MinNightlyCents  int64
}

type Engine struct {
	week *calendar.Week
	cfg  Config
}

func NewEngine(week *calendar.Week, cfg Config) *Engine {
	return &Engine{week: week, cfg: cfg}
}

// NightlyShareCents is the flat per-night share of the weekly total. Each
// night is costed independently from this share, then split among that
// night's occupants.
func (e *Engine) NightlyShareCents() int64 {
	return divRound(e.cfg.TotalWeeklyCents, int64(e.week.Len()))
}

// PriceFor returns the per-occupant price for a night with c occupants.
// ok is false when c is zero: nobody to charge, no price exists.
func (e *Engine) PriceFor(c int) (int64, bool) {
	if c <= 0 {
		return 0, false
	}
	price := divRound(e.NightlyShareCents(), int64(c))
	if price < e.cfg.MinNightlyCents {
		price = e.cfg.MinNightlyCents
	}
	return price, true
}

// Occupancy counts bookings per night key. Every booking lands in exactly
// one night's count.
func Occupancy(bookings []*models.Booking) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.NightKey()]++
	}
	return counts
}

// NightPrices returns every night of the week with its occupancy count and
// price, in calendar order.
func (e *Engine) NightPrices(bookings []*models.Booking) []models.NightPrice {
	return e.NightPricesFromCounts(Occupancy(bookings))
}

// NightPricesFromCounts prices the week from an occupancy snapshot, so a
// cached snapshot can be used without reloading the booking set.
func (e *Engine) NightPricesFromCounts(counts map[string]int) []models.NightPrice {
	out := make([]models.NightPrice, 0, e.week.Len())
	for _, night := range e.week.Nights() {
		c := counts[night.Format(models.DateLayout)]
		price, ok := e.PriceFor(c)
		out = append(out, models.NightPrice{
			Night:      night,
			Occupants:  c,
			PriceCents: price,
			Priced:     ok,
		})
	}
	return out
}

// PersonTotals sums each person's nightly prices over the distinct nights
// they occupy any slot. A person holding two slots the same night is
// charged for that night once. Output is ordered by name, case-insensitive
// ascending, for stable display.
func (e *Engine) PersonTotals(bookings []*models.Booking) []models.PersonTotal {
	counts := Occupancy(bookings)

	nightsByPerson := make(map[string]map[string]bool)
	for _, b := range bookings {
		if nightsByPerson[b.Name] == nil {
			nightsByPerson[b.Name] = make(map[string]bool)
		}
		nightsByPerson[b.Name][b.NightKey()] = true
	}

	totals := make([]models.PersonTotal, 0, len(nightsByPerson))
	for name, nights := range nightsByPerson {
		var sum int64
		for night := range nights {
			if price, ok := e.PriceFor(counts[night]); ok {
				sum += price
			}
		}
		totals = append(totals, models.PersonTotal{
			Name:       name,
			Nights:     len(nights),
			TotalCents: sum,
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		a, b := strings.ToLower(totals[i].Name), strings.ToLower(totals[j].Name)
		if a == b {
			return totals[i].Name < totals[j].Name
		}
		return a < b
	})
	return totals
}

// FormatCents renders cents as a decimal amount, e.g. 30771 -> "307.71".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// divRound divides rounding half away from zero; a and b must be positive.
func divRound(a, b int64) int64 {
	return (a + b/2) / b
}
