package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"couchage/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the booking store. It exclusively owns the booking set; the
// (night, room, slot) uniqueness invariant is enforced by the storage
// layer itself via a unique index, so a concurrent check-then-insert race
// cannot produce a double booking.
type DB struct {
	*sql.DB
	mu          sync.RWMutex
	roomsCache  map[string]models.Room
	sortedRooms []models.Room
	logger      *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{
		DB:         db,
		roomsCache: make(map[string]models.Room),
		logger:     logger,
	}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Одна строка на занятое спальное место в конкретную ночь
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            night TEXT NOT NULL,
            room TEXT NOT NULL,
            slot TEXT NOT NULL,
            name TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Инвариант уникальности: одно место на одну ночь
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_night_room_slot
            ON bookings(night, room, slot)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_night ON bookings(night)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_name ON bookings(name)`,

		// Задачи отложенной выгрузки в Google-таблицу
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id TEXT NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SetRooms caches the slot catalog for reservation validation. Called once
// at startup with the canonical catalog.
func (db *DB) SetRooms(rooms []models.Room) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.roomsCache = make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		db.roomsCache[room.Name] = room
	}
	db.sortedRooms = rooms
}

// GetRooms returns the catalog in configuration order.
func (db *DB) GetRooms() []models.Room {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.sortedRooms
}

// RoomByName looks a room up by its canonical name, exact match.
func (db *DB) RoomByName(name string) (models.Room, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	room, ok := db.roomsCache[name]
	return room, ok
}

func (db *DB) Close() error {
	return db.DB.Close()
}
