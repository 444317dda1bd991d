package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"couchage/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Week       WeekConfig       `yaml:"week"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// WeekConfig bounds the rented period: nights [start, end), ISO dates.
type WeekConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// PricingConfig carries the fixed money inputs. Amounts are configured as
// decimal currency values and converted to integer cents once.
type PricingConfig struct {
	TotalWeeklyCost float64 `yaml:"total_weekly_cost"`
	MinNightlyPrice float64 `yaml:"min_nightly_price"`
	Currency        string  `yaml:"currency"`
}

func (p PricingConfig) TotalWeeklyCents() int64 {
	return toCents(p.TotalWeeklyCost)
}

func (p PricingConfig) MinNightlyCents() int64 {
	return toCents(p.MinNightlyPrice)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port           int                `yaml:"port"`
	RequestTimeout int                `yaml:"request_timeout"`
	Auth           APIAuthConfig      `yaml:"auth"`
	RateLimit      APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env переопределяет плейсхолдеры ${...} в YAML
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Week.Start == "" || c.Week.End == "" {
		return errors.New("week start and end dates are required")
	}

	if c.Pricing.TotalWeeklyCost <= 0 {
		return errors.New("pricing.total_weekly_cost must be positive")
	}
	if c.Pricing.MinNightlyPrice < 0 {
		return errors.New("pricing.min_nightly_price must not be negative")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return nil
}

// ValidateRooms checks the slot catalog for fatal configuration errors:
// empty catalog, duplicate names, empty slots. Room and slot names are
// already canonical (trimmed) when this runs.
func ValidateRooms(rooms []models.Room) error {
	if len(rooms) == 0 {
		return errors.New("rooms catalog is empty")
	}

	roomNames := make(map[string]bool)
	for _, room := range rooms {
		if room.Name == "" {
			return errors.New("room with empty name in catalog")
		}
		if roomNames[room.Name] {
			return fmt.Errorf("duplicate room name in catalog: %s", room.Name)
		}
		roomNames[room.Name] = true

		if len(room.Slots) == 0 {
			return fmt.Errorf("room %s has no slots", room.Name)
		}
		slotNames := make(map[string]bool)
		for _, slot := range room.Slots {
			if slot == "" {
				return fmt.Errorf("room %s has a slot with empty name", room.Name)
			}
			if slotNames[slot] {
				return fmt.Errorf("duplicate slot %s in room %s", slot, room.Name)
			}
			slotNames[slot] = true
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RequestTimeout == 0 {
		c.API.RequestTimeout = models.DefaultRequestTimeoutSeconds
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = "EUR"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// CanonicalizeRooms trims surrounding whitespace from room and slot names
// once at the catalog boundary. Matching everywhere else is exact and
// case-sensitive against these canonical keys.
func CanonicalizeRooms(rooms []models.Room) []models.Room {
	out := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		room.Name = strings.TrimSpace(room.Name)
		slots := make([]string, 0, len(room.Slots))
		for _, slot := range room.Slots {
			slots = append(slots, strings.TrimSpace(slot))
		}
		room.Slots = slots
		out = append(out, room)
	}
	return out
}
