// Package notify announces reservation changes to the housemates' group
// chat. It only sends; it never mutates the booking store.
package notify

import (
	"encoding/json"
	"fmt"

	"couchage/internal/config"
	"couchage/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	var notifierLogger zerolog.Logger
	if logger != nil {
		notifierLogger = logger.With().Str("component", "notify").Logger()
	}

	return &TelegramNotifier{
		sender: bot,
		chatID: cfg.ChatID,
		logger: notifierLogger,
	}, nil
}

// NewWithSender is the constructor used in tests.
func NewWithSender(sender Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	var notifierLogger zerolog.Logger
	if logger != nil {
		notifierLogger = *logger
	}
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: notifierLogger}
}

// Subscribe wires the notifier to reservation lifecycle events.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.handle(events.EventReservationCreated))
	bus.Subscribe(events.EventReservationCancelled, n.handle(events.EventReservationCancelled))
}

func (n *TelegramNotifier) handle(eventType string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Str("event_type", eventType).Msg("decode event payload")
			return err
		}

		msg := tgbotapi.NewMessage(n.chatID, n.formatMessage(eventType, payload))
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Str("event_type", eventType).Msg("send notification")
			return err
		}
		return nil
	}
}

func (n *TelegramNotifier) formatMessage(eventType string, p events.ReservationEventPayload) string {
	switch eventType {
	case events.EventReservationCreated:
		return fmt.Sprintf("🛏 %s a réservé %s / %s pour la nuit du %s", p.Name, p.Room, p.Slot, p.Night)
	case events.EventReservationCancelled:
		return fmt.Sprintf("❌ %s a annulé %s / %s pour la nuit du %s", p.Name, p.Room, p.Slot, p.Night)
	default:
		return fmt.Sprintf("%s: %s %s/%s %s", eventType, p.Name, p.Room, p.Slot, p.Night)
	}
}
