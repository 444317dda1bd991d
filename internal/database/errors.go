package database

import "errors"

var (
	// ErrSlotTaken: a booking already exists for the (night, room, slot)
	// triple. Retrying the same request will conflict again.
	ErrSlotTaken = errors.New("slot is already taken for this night")

	// ErrBookingNotFound: cancel of a booking id that does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrEmptyName: occupant name is empty after trimming.
	ErrEmptyName = errors.New("occupant name is empty")

	// ErrUnknownSlot: the room or slot is not in the catalog.
	ErrUnknownSlot = errors.New("unknown room or slot")

	// ErrNightOutOfRange: the night falls outside the rented week.
	ErrNightOutOfRange = errors.New("night is outside the rented week")
)
