// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abelzeko/transit-board/internal/repository"
	"github.com/abelzeko/transit-board/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot answers status queries and accepts operator messages from allowed chats
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	repo     repository.SnapshotRepository
	allowed  map[int64]bool
	messages chan string
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, repo repository.SnapshotRepository, allowedChatIDs []int64) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	allowed := make(map[int64]bool, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = true
	}

	return &TelegramBot{
		bot:      bot,
		repo:     repo,
		allowed:  allowed,
		messages: make(chan string, 1),
	}, nil
}

// Start listens for and handles Telegram messages until ctx is cancelled
func (t *TelegramBot) Start(ctx context.Context) {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			log.Printf("Received message from %s (chat %d): %s",
				senderName(update.Message), update.Message.Chat.ID, update.Message.Text)
			t.handleMessage(update.Message)
		}
	}
}

// AwaitMessage returns the latest operator message received over chat, waiting at most timeout
func (t *TelegramBot) AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-timer.C:
		return "", false, nil
	case text := <-t.messages:
		return text, true, nil
	}
}

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, "")

	switch {
	case message.IsCommand():
		t.handleCommand(message, &msg)
	default:
		t.handleNonCommand(message, &msg)
	}

	if msg.Text == "" {
		return
	}
	log.Printf("Sending response to chat %d", message.Chat.ID)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	switch message.Command() {
	case "start":
		msg.Text = "Welcome to the transit board bot! Use /status for the line report or /help for more information."

	case "help":
		msg.Text = "Available commands:\n" +
			"/status - Current line status report\n" +
			"/corridor - Corridor line status\n" +
			"/bus - Upcoming bus departures\n" +
			"/failed - Lines that could not be fetched\n" +
			"/message [text] - Replace the operator message\n" +
			"/help - Show this help message"

	case "status":
		t.handleReportCommand(repository.ViewReport, "🚃 運行情報:", msg)

	case "corridor":
		t.handleReportCommand(repository.ViewCorridor, "🚃 沿線の運行情報:", msg)

	case "failed":
		t.handleFailedCommand(msg)

	case "bus":
		t.handleBusCommand(msg)

	case "message":
		t.handleOperatorMessage(message.Chat.ID, message.CommandArguments(), msg)

	default:
		log.Printf("Received unknown command /%s", message.Command())
		msg.Text = "Unknown command. Use /help to see available commands."
	}
}

func (t *TelegramBot) handleReportCommand(view, title string, msg *tgbotapi.MessageConfig) {
	entries, err := t.repo.GetReport(view)
	if err != nil {
		msg.Text = "Error fetching line status. Please try again later."
		log.Printf("Error fetching %s entries: %v", view, err)
		return
	}

	lastUpdate, _ := t.repo.GetLastUpdateTime(repository.PipelineDisruption)
	msg.Text = usecases.FormatLineStatus(title, entries, lastUpdate)
}

func (t *TelegramBot) handleFailedCommand(msg *tgbotapi.MessageConfig) {
	failed, err := t.repo.GetFailedLines()
	if err != nil {
		msg.Text = "Error fetching line status. Please try again later."
		log.Printf("Error fetching failed lines: %v", err)
		return
	}
	if len(failed) == 0 {
		msg.Text = "Every line was fetched successfully in the last cycle."
		return
	}

	lastUpdate, _ := t.repo.GetLastUpdateTime(repository.PipelineDisruption)
	msg.Text = usecases.FormatLineStatus("⚠️ 取得失敗:", failed, lastUpdate)
}

func (t *TelegramBot) handleBusCommand(msg *tgbotapi.MessageConfig) {
	records, err := t.repo.GetDepartures()
	if err != nil {
		msg.Text = "Error fetching bus schedule. Please try again later."
		log.Printf("Error fetching departures: %v", err)
		return
	}

	lastUpdate, _ := t.repo.GetLastUpdateTime(repository.PipelineBus)
	msg.Text = usecases.FormatDepartures(records, lastUpdate)
}

func (t *TelegramBot) handleOperatorMessage(chatID int64, text string, msg *tgbotapi.MessageConfig) {
	if !t.allowed[chatID] {
		log.Printf("Rejected operator message from chat %d", chatID)
		msg.Text = "This chat is not allowed to post operator messages."
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		msg.Text = "Please provide a message. Example: /message 本日は臨時ダイヤです"
		return
	}

	// Keep only the newest message
	select {
	case <-t.messages:
	default:
	}
	t.messages <- text

	log.Printf("Queued operator message from chat %d", chatID)
	msg.Text = "📥 Message queued for the next cycle."
}

// handleNonCommand treats plain text from an allowed chat as an operator message
func (t *TelegramBot) handleNonCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	if t.allowed[message.Chat.ID] {
		t.handleOperatorMessage(message.Chat.ID, message.Text, msg)
		return
	}
	msg.Text = "I don't understand. Use /help to see available commands."
}

func senderName(message *tgbotapi.Message) string {
	if message.From == nil {
		return "unknown"
	}
	return message.From.UserName
}
