package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failOn int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}

	f.sent = append(f.sent, msg)

	if f.failOn > 0 && len(f.sent) == f.failOn {
		return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
	}

	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestFormatEntry(t *testing.T) {
	tests := []struct {
		name         string
		entry        domain.ArchiveEntry
		wantContains []string
		wantMissing  []string
	}{
		{
			name: "ranked entry",
			entry: domain.ArchiveEntry{
				Category:     "K-Pop",
				Keyword:      "뉴진스",
				Title:        "뉴진스 <컴백> 확정",
				Summary:      "5월 컴백 & 월드투어",
				OriginalLink: "https://press.example.com/a?x=1&y=2",
				Score:        8.5,
				Rank:         1,
			},
			wantContains: []string{
				"<b>[K-Pop]</b> 뉴진스 &lt;컴백&gt; 확정",
				"#1 · ⭐ 8.5 · 뉴진스",
				"5월 컴백 &amp; 월드투어",
				`<a href="https://press.example.com/a?x=1&amp;y=2">원문 보기</a>`,
			},
		},
		{
			name: "score only entry without link",
			entry: domain.ArchiveEntry{
				Category: "K-Drama",
				Keyword:  "드라마",
				Title:    "시청률 1위",
				Score:    7,
			},
			wantContains: []string{"⭐ 7.0 · 드라마"},
			wantMissing:  []string{"#0", "<a href"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEntry(tt.entry)

			for _, s := range tt.wantContains {
				assert.Contains(t, got, s)
			}

			for _, s := range tt.wantMissing {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestTelegram_NotifyArchived(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{failOn: 1}
	n := NewTelegramWithSender(sender, 42, &logger)

	err := n.NotifyArchived(context.Background(), []domain.ArchiveEntry{
		{Category: "K-Pop", Title: "a", OriginalLink: "https://a.example.com"},
		{Category: "K-Pop", Title: "b", OriginalLink: "https://b.example.com", ImageURL: "https://b.example.com/b.jpg"},
	})
	require.Error(t, err)

	require.Len(t, sender.sent, 2, "a failed send does not stop the rest")
	assert.Equal(t, int64(42), sender.sent[1].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[1].ParseMode)
	assert.True(t, sender.sent[0].DisableWebPagePreview)
	assert.False(t, sender.sent[1].DisableWebPagePreview)
}

func TestTelegram_CanceledContext(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	n := NewTelegramWithSender(sender, 1, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.NotifyArchived(ctx, []domain.ArchiveEntry{{Title: "a"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestNewTelegram_NoChat(t *testing.T) {
	logger := zerolog.Nop()

	_, err := NewTelegram("token", 0, &logger)
	require.ErrorIs(t, err, ErrNoChat)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.NotifyArchived(context.Background(), []domain.ArchiveEntry{{Title: "a"}}))
}
