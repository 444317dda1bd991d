package pricing

import (
	"testing"
	"time"

	"couchage/internal/calendar"
	"couchage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2154.00 total over 7 nights with a 31.00 nightly floor.
func testEngine(t *testing.T) *Engine {
	week, err := calendar.Parse("2026-07-11", "2026-07-18")
	require.NoError(t, err)
	return NewEngine(week, Config{
		TotalWeeklyCents: 215400,
		MinNightlyCents:  3100,
	})
}

func night(day int) time.Time {
	return time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC)
}

func booking(day int, room, slot, name string) *models.Booking {
	return &models.Booking{Night: night(day), Room: room, Slot: slot, Name: name}
}

func TestNightlyShare(t *testing.T) {
	engine := testEngine(t)

	// 215400 / 7 = 30771.43, rounded to the nearest cent
	assert.Equal(t, int64(30771), engine.NightlyShareCents())
}

func TestPriceFor(t *testing.T) {
	engine := testEngine(t)

	t.Run("SingleOccupantPaysFullShare", func(t *testing.T) {
		price, ok := engine.PriceFor(1)
		require.True(t, ok)
		assert.Equal(t, int64(30771), price)
	})

	t.Run("TenOccupantsHitTheFloor", func(t *testing.T) {
		// 30771 / 10 = 3077, below the 3100 floor
		price, ok := engine.PriceFor(10)
		require.True(t, ok)
		assert.Equal(t, int64(3100), price)
	})

	t.Run("ZeroOccupantsIsUnpriced", func(t *testing.T) {
		price, ok := engine.PriceFor(0)
		assert.False(t, ok)
		assert.Equal(t, int64(0), price)
	})

	t.Run("NeverBelowFloor", func(t *testing.T) {
		for c := 1; c <= 50; c++ {
			price, ok := engine.PriceFor(c)
			require.True(t, ok)
			assert.GreaterOrEqual(t, price, int64(3100), "occupants=%d", c)
		}
	})
}

func TestOccupancy(t *testing.T) {
	bookings := []*models.Booking{
		booking(11, "Chambre bleue", "lit double - place 1", "Alice"),
		booking(11, "Chambre bleue", "lit double - place 2", "Bob"),
		booking(12, "Chambre bleue", "lit double - place 1", "Alice"),
	}

	counts := Occupancy(bookings)
	assert.Equal(t, 2, counts["2026-07-11"])
	assert.Equal(t, 1, counts["2026-07-12"])

	// every booking lands in exactly one night's count
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, len(bookings), total)
}

func TestNightPrices(t *testing.T) {
	engine := testEngine(t)

	bookings := []*models.Booking{
		booking(11, "Chambre bleue", "lit double - place 1", "Alice"),
		booking(11, "Chambre bleue", "lit double - place 2", "Bob"),
	}

	prices := engine.NightPrices(bookings)
	require.Len(t, prices, 7)

	// occupied night splits the share between two occupants
	assert.Equal(t, night(11), prices[0].Night)
	assert.Equal(t, 2, prices[0].Occupants)
	assert.True(t, prices[0].Priced)
	assert.Equal(t, int64(15386), prices[0].PriceCents)

	// empty nights are reported but carry no price
	for _, p := range prices[1:] {
		assert.Equal(t, 0, p.Occupants)
		assert.False(t, p.Priced)
	}
}

func TestPersonTotals(t *testing.T) {
	engine := testEngine(t)

	t.Run("SharedNightSplitsEvenly", func(t *testing.T) {
		bookings := []*models.Booking{
			booking(11, "Chambre bleue", "lit double - place 1", "Alice"),
			booking(11, "Chambre bleue", "lit double - place 2", "Bob"),
			booking(12, "Chambre bleue", "lit double - place 1", "Alice"),
		}

		totals := engine.PersonTotals(bookings)
		require.Len(t, totals, 2)

		// share/2 on the shared night, full share on the solo night
		assert.Equal(t, "Alice", totals[0].Name)
		assert.Equal(t, 2, totals[0].Nights)
		assert.Equal(t, int64(15386+30771), totals[0].TotalCents)

		assert.Equal(t, "Bob", totals[1].Name)
		assert.Equal(t, 1, totals[1].Nights)
		assert.Equal(t, int64(15386), totals[1].TotalCents)
	})

	t.Run("TwoSlotsSameNightChargedOnce", func(t *testing.T) {
		bookings := []*models.Booking{
			booking(11, "Chambre bleue", "lit double - place 1", "Alice"),
			booking(11, "Chambre verte", "lit simple", "Alice"),
		}

		totals := engine.PersonTotals(bookings)
		require.Len(t, totals, 1)
		assert.Equal(t, 1, totals[0].Nights)

		// the night has two occupied slots, so the per-head price is share/2,
		// and Alice pays it a single time
		assert.Equal(t, int64(15386), totals[0].TotalCents)
	})

	t.Run("OrderedCaseInsensitive", func(t *testing.T) {
		bookings := []*models.Booking{
			booking(11, "Chambre bleue", "lit double - place 1", "bob"),
			booking(12, "Chambre bleue", "lit double - place 1", "Alice"),
			booking(13, "Chambre bleue", "lit double - place 1", "Charlie"),
		}

		totals := engine.PersonTotals(bookings)
		require.Len(t, totals, 3)
		assert.Equal(t, "Alice", totals[0].Name)
		assert.Equal(t, "bob", totals[1].Name)
		assert.Equal(t, "Charlie", totals[2].Name)
	})

	t.Run("Empty", func(t *testing.T) {
		totals := engine.PersonTotals(nil)
		assert.Empty(t, totals)
	})
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "307.71", FormatCents(30771))
	assert.Equal(t, "31.00", FormatCents(3100))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-12.34", FormatCents(-1234))
}

func TestDivRound(t *testing.T) {
	assert.Equal(t, int64(30771), divRound(215400, 7))
	assert.Equal(t, int64(3077), divRound(30771, 10))
	assert.Equal(t, int64(2), divRound(3, 2))
}
