package api

import (
	"context"
	"testing"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/abelzeko/transit-board/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	reports    map[string][]entities.LineStatus
	failed     []entities.LineStatus
	departures []entities.DepartureRecord
	updated    time.Time
}

func (r *stubRepository) SaveDepartures(records []entities.DepartureRecord, at time.Time) error {
	return nil
}

func (r *stubRepository) SaveDisruptionCycle(snapshot repository.DisruptionSnapshot) error {
	return nil
}

func (r *stubRepository) GetDepartures() ([]entities.DepartureRecord, error) { return r.departures, nil }

func (r *stubRepository) GetReport(view string) ([]entities.LineStatus, error) {
	return r.reports[view], nil
}

func (r *stubRepository) GetFailedLines() ([]entities.LineStatus, error) { return r.failed, nil }

func (r *stubRepository) GetLastUpdateTime(pipeline string) (time.Time, error) { return r.updated, nil }

func (r *stubRepository) Close() error { return nil }

func newTestBot(repo repository.SnapshotRepository, allowed ...int64) *TelegramBot {
	allowedChats := make(map[int64]bool)
	for _, id := range allowed {
		allowedChats[id] = true
	}
	return &TelegramBot{repo: repo, allowed: allowedChats, messages: make(chan string, 1)}
}

func command(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestStatusCommand(t *testing.T) {
	repo := &stubRepository{
		reports: map[string][]entities.LineStatus{
			repository.ViewReport: {{LineName: "京王線", InfoText: "運転を見合わせています", StatusKind: entities.StatusServiceSuspended}},
		},
		updated: time.Date(2025, 5, 1, 8, 6, 0, 0, time.Local),
	}
	bot := newTestBot(repo)

	msg := tgbotapi.NewMessage(1, "")
	bot.handleCommand(command(1, "/status"), &msg)

	assert.Contains(t, msg.Text, "京王線【運転見合わせ】")
	assert.Contains(t, msg.Text, "2025-05-01 08:06:00")
}

func TestCorridorCommandWithoutSnapshot(t *testing.T) {
	bot := newTestBot(&stubRepository{})

	msg := tgbotapi.NewMessage(1, "")
	bot.handleCommand(command(1, "/corridor"), &msg)

	assert.Equal(t, "No line status available yet.", msg.Text)
}

func TestFailedCommand(t *testing.T) {
	bot := newTestBot(&stubRepository{})
	msg := tgbotapi.NewMessage(1, "")
	bot.handleCommand(command(1, "/failed"), &msg)
	assert.Contains(t, msg.Text, "successfully")

	bot = newTestBot(&stubRepository{failed: []entities.LineStatus{
		{LineName: "総武線快速", InfoText: "運行情報を取得できませんでした", StatusKind: entities.StatusFetchFailed},
	}})
	msg = tgbotapi.NewMessage(1, "")
	bot.handleCommand(command(1, "/failed"), &msg)
	assert.Contains(t, msg.Text, "総武線快速【取得失敗】")
}

func TestBusCommand(t *testing.T) {
	bot := newTestBot(&stubRepository{departures: []entities.DepartureRecord{
		{LeaveTime: "08:00", DelayMinutes: "3", MinutesUntilArrival: "12"},
	}})

	msg := tgbotapi.NewMessage(1, "")
	bot.handleCommand(command(1, "/bus"), &msg)

	assert.Contains(t, msg.Text, "08:00 (遅れ3分) 12分後に到着")
}

func TestOperatorMessageFromAllowedChat(t *testing.T) {
	bot := newTestBot(&stubRepository{}, 42)

	msg := tgbotapi.NewMessage(42, "")
	bot.handleCommand(command(42, "/message 古いメッセージ"), &msg)
	msg = tgbotapi.NewMessage(42, "")
	bot.handleNonCommand(&tgbotapi.Message{Text: "本日は臨時ダイヤです", Chat: &tgbotapi.Chat{ID: 42}}, &msg)
	assert.Contains(t, msg.Text, "queued")

	// Only the newest message is kept
	text, ok, err := bot.AwaitMessage(context.Background(), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "本日は臨時ダイヤです", text)
}

func TestOperatorMessageRejectedFromOtherChat(t *testing.T) {
	bot := newTestBot(&stubRepository{}, 42)

	msg := tgbotapi.NewMessage(7, "")
	bot.handleCommand(command(7, "/message こんにちは"), &msg)
	assert.Contains(t, msg.Text, "not allowed")

	_, ok, err := bot.AwaitMessage(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyOperatorMessage(t *testing.T) {
	bot := newTestBot(&stubRepository{}, 42)

	msg := tgbotapi.NewMessage(42, "")
	bot.handleCommand(command(42, "/message"), &msg)

	assert.Contains(t, msg.Text, "Please provide a message")
}
