package telegram

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
)

const (
	sendTimeout   = 30 * time.Second
	maxMessageLen = 4096 // Bot API limit, in characters
)

// Sender posts messages through the Telegram Bot API. chatID is either a
// numeric user id or a "@username" channel handle.
type Sender struct {
	bot *bot.Bot
}

// NewSender builds a Bot API client for the given token.
func NewSender(token string) (*Sender, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return &Sender{bot: b}, nil
}

// truncateMessage cuts text to the Bot API character limit. The limit is in
// runes, not bytes; a byte slice could land mid-rune and produce invalid
// UTF-8 the API rejects.
func truncateMessage(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLen])
}

// SendMessage sends a plain text message with a fixed 30-second timeout.
func (s *Sender) SendMessage(ctx context.Context, chatID any, text string) error {
	text = truncateMessage(text)
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// ChannelChatID normalizes a stored channel username into a Bot API chat id.
func ChannelChatID(username string) string {
	if len(username) > 0 && username[0] == '@' {
		return username
	}
	return "@" + username
}
