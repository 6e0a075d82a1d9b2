// Package telegram provides a client for sending analytics digests via Telegram Bot API.
// It formats inventory reorder alerts and segment summaries into human-readable
// messages and handles delivery with retry logic for reliability.
package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/merrow-labs/shopsight/internal/models"
)

// Digest carries the results worth pushing to a chat after an analysis run.
type Digest struct {
	GeneratedAt time.Time
	// Profiles must already be sorted by descending daily sales rate.
	Profiles     []models.ProductProfile
	SegmentSizes map[int]int
}

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// maxDigestProducts caps the number of products listed in a single message.
const maxDigestProducts = 10

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers a digest message to the configured chat
func (c *Client) Send(digest Digest) error {
	message := formatDigest(digest)

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2"

	// Send with retry
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatDigest formats an analysis digest into a Telegram message
func formatDigest(digest Digest) string {
	message := "📊 *Shopsight Analysis Digest*\n\n"

	dateStr := escapeMarkdownV2(digest.GeneratedAt.Format("2006-01-02 15:04:05"))
	message += fmt.Sprintf("📅 Generated: %s\n\n", dateStr)

	if len(digest.SegmentSizes) > 0 {
		message += "👥 *Customer Segments*\n"
		segments := make([]int, 0, len(digest.SegmentSizes))
		for s := range digest.SegmentSizes {
			segments = append(segments, s)
		}
		sort.Ints(segments)
		for _, s := range segments {
			message += fmt.Sprintf("   Segment %d: %d customers\n", s, digest.SegmentSizes[s])
		}
		message += "\n"
	}

	if len(digest.Profiles) > 0 {
		message += "📦 *Fastest Moving Products*\n"
		n := len(digest.Profiles)
		if n > maxDigestProducts {
			n = maxDigestProducts
		}
		for i := 0; i < n; i++ {
			p := digest.Profiles[i]
			rateStr := escapeMarkdownV2(fmt.Sprintf("%.2f/day", p.DailySalesRate))
			reorderStr := escapeMarkdownV2(fmt.Sprintf("%.1f", p.ReorderPoint))
			message += fmt.Sprintf("%d\\. Product %d \\(%s\\)\n", i+1, p.ProductID, escapeMarkdownV2(p.Category))
			message += fmt.Sprintf("   📈 Rate: *%s*\n", rateStr)
			message += fmt.Sprintf("   🔔 Reorder at: %s units\n\n", reorderStr)
		}
	}

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
