package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"couchage/internal/api"
	"couchage/internal/calendar"
	"couchage/internal/config"
	"couchage/internal/database"
	"couchage/internal/domain"
	"couchage/internal/events"
	"couchage/internal/export"
	"couchage/internal/google"
	"couchage/internal/logging"
	"couchage/internal/metrics"
	"couchage/internal/models"
	"couchage/internal/notify"
	"couchage/internal/pricing"
	"couchage/internal/repository"
	"couchage/internal/service"
	"couchage/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	rooms, err := loadRooms(&logger)
	if err != nil {
		return err
	}

	week, err := calendar.Parse(cfg.Week.Start, cfg.Week.End)
	if err != nil {
		logger.Error().Err(err).Msg("invalid week configuration")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("init database")
		return err
	}
	defer db.Close()
	db.SetRooms(rooms)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, cache := initOccupancyCache(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, worker.DefaultRetryPolicy(), &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	initNotifier(cfg, eventBus, &logger)

	engine := pricing.NewEngine(week, pricing.Config{
		TotalWeeklyCents: cfg.Pricing.TotalWeeklyCents(),
		MinNightlyCents:  cfg.Pricing.MinNightlyCents(),
	})

	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}
	bookingService := service.NewBookingService(db, cache, eventBus, syncWorker, week, engine, &logger)
	exporter := export.New(bookingService, week, cfg.Exports, &logger)

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookingService, exporter, &logger)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadRooms(logger *zerolog.Logger) ([]models.Room, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = "configs/rooms.yaml"
	}

	rooms, err := config.LoadRooms(roomsPath)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("load rooms catalog")
		return nil, err
	}
	return rooms, nil
}

func initOccupancyCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.OccupancyCache) {
	memory := repository.NewMemoryOccupancyCache(models.DefaultRedisTTL * time.Second)

	if !cfg.Redis.Enabled {
		return nil, memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory occupancy cache")
		_ = repository.Close(client)
		return nil, memory
	}

	primary := repository.NewRedisOccupancyCache(client, models.DefaultRedisTTL*time.Second)
	return client, repository.NewFailoverOccupancyCache(primary, memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Info().Msg("Google Sheets mirror is not configured")
		return nil
	}

	svc, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Error().Err(err).Msg("init Google Sheets, continuing without mirror")
		return nil
	}
	return svc
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init telegram notifier, continuing without notifications")
		return
	}
	notifier.Subscribe(bus)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
