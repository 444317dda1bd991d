package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"couchage/internal/metrics"
	"couchage/internal/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Reserve inserts the booking. The unique index on (night, room, slot)
// makes the check and the insert one atomic unit; a violation surfaces as
// ErrSlotTaken.
func (db *DB) Reserve(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (id, night, room, slot, name, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}

	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.Night.Format(models.DateLayout),
		booking.Room,
		booking.Slot,
		booking.Name,
		booking.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// Cancel removes the booking with that id, freeing its triple. A second
// cancel of the same id reports ErrBookingNotFound and touches nothing.
func (db *DB) Cancel(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	var nightStr string
	query := `SELECT id, night, room, slot, name, created_at FROM bookings WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &nightStr, &b.Room, &b.Slot, &b.Name, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	b.Night, err = time.Parse(models.DateLayout, nightStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking night %s: %w", nightStr, err)
	}
	return &b, nil
}

// ListBookings returns the full booking set ordered by night then creation
// time. A row whose night does not parse is skipped and logged rather than
// failing the whole read; the system stays usable with partial data.
func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT id, night, room, slot, name, created_at
              FROM bookings ORDER BY night ASC, created_at ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var nightStr string
		if err := rows.Scan(&b.ID, &nightStr, &b.Room, &b.Slot, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Night, err = time.Parse(models.DateLayout, nightStr)
		if err != nil {
			db.logger.Warn().Str("booking_id", b.ID).Str("night", nightStr).
				Msg("skipping booking with malformed night")
			metrics.IncMalformedRow()
			continue
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// Occupant reports who holds the exact (night, room, slot) triple, if
// anyone. Room and slot are matched case-sensitively against the canonical
// catalog keys.
func (db *DB) Occupant(ctx context.Context, night time.Time, room, slot string) (string, bool, error) {
	var name string
	query := `SELECT name FROM bookings WHERE night = ? AND room = ? AND slot = ?`
	err := db.QueryRowContext(ctx, query, night.Format(models.DateLayout), room, slot).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up occupant: %w", err)
	}
	return name, true, nil
}

// CountForNight returns the occupancy count for one night, across all
// rooms and slots.
func (db *DB) CountForNight(ctx context.Context, night time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE night = ?`
	err := db.QueryRowContext(ctx, query, night.Format(models.DateLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count night occupancy: %w", err)
	}
	return count, nil
}

// NightCounts returns occupancy per night key for every night that has at
// least one booking.
func (db *DB) NightCounts(ctx context.Context) (map[string]int, error) {
	query := `SELECT night, COUNT(*) FROM bookings GROUP BY night`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get night counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var night string
		var count int
		if err := rows.Scan(&night, &count); err != nil {
			return nil, fmt.Errorf("failed to scan night count: %w", err)
		}
		counts[night] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate night counts: %w", err)
	}
	return counts, nil
}
