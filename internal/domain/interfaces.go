package domain

import (
	"context"
	"time"

	"couchage/internal/models"
)

// Store is the booking store contract: the four core operations plus the
// derived reads the pricing queries need.
type Store interface {
	Reserve(ctx context.Context, booking *models.Booking) error
	Cancel(ctx context.Context, id string) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	Occupant(ctx context.Context, night time.Time, room, slot string) (string, bool, error)
	CountForNight(ctx context.Context, night time.Time) (int, error)
	NightCounts(ctx context.Context) (map[string]int, error)
	GetRooms() []models.Room
	RoomByName(name string) (models.Room, bool)
}

// OccupancyCache caches per-night occupancy snapshots. Purely an
// optimization; a miss falls through to the store.
type OccupancyCache interface {
	GetCounts(ctx context.Context) (map[string]int, bool, error)
	SetCounts(ctx context.Context, counts map[string]int) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker schedules mirror updates to the house spreadsheet.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error
}

// SheetsWriter mirrors bookings to the shared spreadsheet.
type SheetsWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
	RemoveBooking(ctx context.Context, bookingID string) error
	ReplaceBookings(ctx context.Context, bookings []*models.Booking) error
}

// BookingService is the surface the HTTP layer talks to.
type BookingService interface {
	Reserve(ctx context.Context, night time.Time, room, slot, name string) (*models.Booking, error)
	Cancel(ctx context.Context, id string) error
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	Occupant(ctx context.Context, night time.Time, room, slot string) (string, bool, error)
	NightPrices(ctx context.Context) ([]models.NightPrice, error)
	PersonTotals(ctx context.Context) ([]models.PersonTotal, error)
	Rooms() []models.Room
}
