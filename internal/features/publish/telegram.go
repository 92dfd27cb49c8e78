// Package publish sends rendered charts to a Telegram chat.
package publish

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	logging "github.com/haya14busa/github-release-stats/internal/infra/log"

	humanize "github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI the publisher uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Publisher struct {
	sender Sender
	chatID int64
}

// NewTelegramPublisher authorizes botToken and targets chatID.
func NewTelegramPublisher(botToken, chatID string) (*Publisher, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required (env: TELEGRAM_BOT_TOKEN)")
	}
	id, err := ParseChatID(chatID)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return NewPublisher(bot, id), nil
}

func NewPublisher(sender Sender, chatID int64) *Publisher {
	return &Publisher{sender: sender, chatID: chatID}
}

// ParseChatID accepts numeric chat ids, including negative group ids.
func ParseChatID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("telegram chat id is required (env: TELEGRAM_CHAT_ID)")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", s, err)
	}
	return id, nil
}

// Caption is the HTML photo caption for a repository with latest total downloads.
func Caption(owner, repo string, latest int64) string {
	return fmt.Sprintf("<b>%s/%s</b>: %s total downloads", html.EscapeString(owner), html.EscapeString(repo), humanize.Comma(latest))
}

// PublishChart sends png as a photo named fileName with an HTML caption.
func (p *Publisher) PublishChart(fileName string, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: fileName, Bytes: png})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	if _, err := p.sender.Send(photo); err != nil {
		return fmt.Errorf("failed to send chart to chat %d: %w", p.chatID, err)
	}
	logging.LogInfo("Chart sent", zap.Int64("chatID", p.chatID), zap.String("file", fileName), zap.Int("bytes", len(png)))
	return nil
}
