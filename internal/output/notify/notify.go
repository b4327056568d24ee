// Package notify announces newly archived items to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

const (
	maxTitleRunes   = 200
	maxSummaryRunes = 600
	linkLabel       = "원문 보기"
)

// ErrNoChat is returned when a bot token is configured without a chat id.
var ErrNoChat = errors.New("telegram chat id not configured")

// Sender is the subset of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts one HTML message per archived item.
type Telegram struct {
	api    Sender
	chatID int64
	logger *zerolog.Logger
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64, logger *zerolog.Logger) (*Telegram, error) {
	if chatID == 0 {
		return nil, ErrNoChat
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info().Str("bot", api.Self.UserName).Int64("chat_id", chatID).Msg("Telegram notifier ready")

	return NewTelegramWithSender(api, chatID, logger), nil
}

func NewTelegramWithSender(api Sender, chatID int64, logger *zerolog.Logger) *Telegram {
	return &Telegram{api: api, chatID: chatID, logger: logger}
}

// NotifyArchived sends every entry. A failed send does not stop the rest;
// the failures are returned joined.
func (t *Telegram) NotifyArchived(ctx context.Context, entries []domain.ArchiveEntry) error {
	var errs []error

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(t.chatID, FormatEntry(e))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = e.ImageURL == ""

		if _, err := t.api.Send(msg); err != nil {
			observability.NotificationsSent.WithLabelValues(observability.StatusError).Inc()
			t.logger.Warn().Err(err).Str("link", e.OriginalLink).Msg("failed to send notification")
			errs = append(errs, err)

			continue
		}

		observability.NotificationsSent.WithLabelValues(observability.StatusSuccess).Inc()
	}

	return errors.Join(errs...)
}

// FormatEntry renders an archive entry as Telegram HTML.
func FormatEntry(e domain.ArchiveEntry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>[%s]</b> %s\n",
		htmlutils.EscapeHTML(e.Category), htmlutils.EscapeHTML(htmlutils.TruncateRunes(e.Title, maxTitleRunes)))

	if e.Rank > 0 {
		fmt.Fprintf(&sb, "#%d · ", e.Rank)
	}

	fmt.Fprintf(&sb, "⭐ %.1f · %s\n", e.Score, htmlutils.EscapeHTML(e.Keyword))

	if summary := strings.TrimSpace(e.Summary); summary != "" {
		sb.WriteString("\n")
		sb.WriteString(htmlutils.EscapeHTML(htmlutils.TruncateRunes(summary, maxSummaryRunes)))
		sb.WriteString("\n")
	}

	if e.OriginalLink != "" {
		fmt.Fprintf(&sb, "\n<a href=\"%s\">%s</a>", htmlutils.EscapeHTML(e.OriginalLink), linkLabel)
	}

	return sb.String()
}

// Nop drops every notification.
type Nop struct{}

func (Nop) NotifyArchived(context.Context, []domain.ArchiveEntry) error { return nil }
