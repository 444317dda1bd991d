package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"couchage/internal/calendar"
	"couchage/internal/database"
	"couchage/internal/domain"
	"couchage/internal/events"
	"couchage/internal/metrics"
	"couchage/internal/models"
	"couchage/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	store      domain.Store
	cache      domain.OccupancyCache
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	week       *calendar.Week
	engine     *pricing.Engine
	logger     *zerolog.Logger
}

func NewBookingService(store domain.Store, cache domain.OccupancyCache, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, week *calendar.Week, engine *pricing.Engine, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:      store,
		cache:      cache,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		week:       week,
		engine:     engine,
		logger:     logger,
	}
}

// Reserve validates the request and creates the booking. The store's
// unique key decides conflicts, not a prior existence check.
func (s *BookingService) Reserve(ctx context.Context, night time.Time, room, slot, name string) (*models.Booking, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, database.ErrEmptyName
	}

	room = strings.TrimSpace(room)
	slot = strings.TrimSpace(slot)
	catalogRoom, ok := s.store.RoomByName(room)
	if !ok || !catalogRoom.HasSlot(slot) {
		return nil, database.ErrUnknownSlot
	}

	night = calendar.Midnight(night)
	if !s.week.Contains(night) {
		return nil, database.ErrNightOutOfRange
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		Night:     night,
		Room:      room,
		Slot:      slot,
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.store.Reserve(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncConflict()
		}
		return nil, err
	}

	metrics.IncReservation()
	s.invalidateCache(ctx)
	s.publishEvent(events.EventReservationCreated, booking)
	s.enqueueSync(ctx, "upsert", booking)

	return booking, nil
}

// Cancel removes a booking by id, freeing its triple.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Cancel(ctx, id); err != nil {
		return err
	}

	metrics.IncCancellation()
	s.invalidateCache(ctx)
	s.publishEvent(events.EventReservationCancelled, booking)
	s.enqueueSync(ctx, "delete", booking)

	return nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *BookingService) Occupant(ctx context.Context, night time.Time, room, slot string) (string, bool, error) {
	return s.store.Occupant(ctx, calendar.Midnight(night), strings.TrimSpace(room), strings.TrimSpace(slot))
}

// NightPrices prices the whole week from the occupancy snapshot, serving
// from cache when a fresh one exists.
func (s *BookingService) NightPrices(ctx context.Context) ([]models.NightPrice, error) {
	counts, err := s.occupancyCounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.NightPricesFromCounts(counts), nil
}

func (s *BookingService) PersonTotals(ctx context.Context) ([]models.PersonTotal, error) {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.PersonTotals(bookings), nil
}

func (s *BookingService) Rooms() []models.Room {
	return s.store.GetRooms()
}

func (s *BookingService) occupancyCounts(ctx context.Context) (map[string]int, error) {
	if s.cache != nil {
		counts, hit, err := s.cache.GetCounts(ctx)
		if err == nil && hit {
			return counts, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("occupancy cache read failed")
		}
	}

	counts, err := s.store.NightCounts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCounts(ctx, counts); err != nil {
			s.logger.Warn().Err(err).Msg("occupancy cache write failed")
		}
	}
	return counts, nil
}

func (s *BookingService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("occupancy cache invalidate failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		BookingID: booking.ID,
		Night:     booking.NightKey(),
		Room:      booking.Room,
		Slot:      booking.Slot,
		Name:      booking.Name,
		CreatedAt: booking.CreatedAt,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
