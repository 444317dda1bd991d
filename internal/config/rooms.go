package config

import (
	"fmt"
	"os"

	"couchage/internal/models"

	yamlv2 "gopkg.in/yaml.v2"
)

// LoadRooms reads the slot catalog from its own YAML file. The catalog is
// loaded once at startup; any problem here is a fatal configuration error,
// never a runtime failure.
func LoadRooms(path string) ([]models.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rooms catalog %s: %w", path, err)
	}

	var catalog struct {
		Rooms []models.Room `yaml:"rooms"`
	}
	if err := yamlv2.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse rooms catalog %s: %w", path, err)
	}

	rooms := CanonicalizeRooms(catalog.Rooms)
	if err := ValidateRooms(rooms); err != nil {
		return nil, fmt.Errorf("rooms catalog validation failed: %w", err)
	}

	return rooms, nil
}
