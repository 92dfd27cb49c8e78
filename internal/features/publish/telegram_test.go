package publish

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	sendFn func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	sent   []tgbotapi.Chattable
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	if m.sendFn != nil {
		return m.sendFn(c)
	}
	return tgbotapi.Message{MessageID: 1}, nil
}

func TestPublishChart(t *testing.T) {
	sender := &mockSender{}
	p := NewPublisher(sender, -1001234)

	require.NoError(t, p.PublishChart("chart.png", []byte{0x89, 'P', 'N', 'G'}, Caption("octo", "tool", 1234567)))

	require.Len(t, sender.sent, 1)
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-1001234), photo.ChatID)
	assert.Equal(t, "<b>octo/tool</b>: 1,234,567 total downloads", photo.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, photo.ParseMode)

	file, ok := photo.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "chart.png", file.Name)
	assert.Len(t, file.Bytes, 4)
}

func TestPublishChartSendError(t *testing.T) {
	sender := &mockSender{sendFn: func(tgbotapi.Chattable) (tgbotapi.Message, error) {
		return tgbotapi.Message{}, errors.New("chat not found")
	}}
	err := NewPublisher(sender, 42).PublishChart("chart.png", nil, "")
	assert.ErrorContains(t, err, "chat not found")
	assert.ErrorContains(t, err, "42")
}

func TestCaptionEscapesNames(t *testing.T) {
	assert.Equal(t, "<b>a&lt;b&gt;/c&amp;d</b>: 0 total downloads", Caption("a<b>", "c&d", 0))
}

func TestParseChatID(t *testing.T) {
	id, err := ParseChatID(" -100200 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-100200), id)

	_, err = ParseChatID("")
	assert.Error(t, err)
	_, err = ParseChatID("@channel")
	assert.Error(t, err)
}

func TestNewTelegramPublisherRequiresToken(t *testing.T) {
	_, err := NewTelegramPublisher("", "1")
	assert.ErrorContains(t, err, "token")
}
