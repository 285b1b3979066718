// Package telegram implements gateway.Gateway over the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alfredjeanlab/eugenio/internal/checklist"
	"github.com/alfredjeanlab/eugenio/internal/gateway"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Client calls Bot API methods for one bot token.
type Client struct {
	api *tgbotapi.BotAPI
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient connects to the Bot API and verifies the token with getMe.
// apiURL defaults to DefaultAPIURL. The HTTP timeout must exceed the
// long-poll timeout used with GetUpdates.
func NewClient(apiURL, token string, timeout time.Duration) (*Client, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	endpoint := strings.TrimRight(apiURL, "/") + "/bot%s/%s"
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	return &Client{api: api}, nil
}

// Username is the bot's own @handle, as reported by getMe.
func (c *Client) Username() string { return c.api.Self.UserName }

// keyboard lays out one button per row. An empty list still encodes as
// an empty keyboard rather than null.
func keyboard(rows []checklist.Row) tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))}
	for _, r := range rows {
		kb.InlineKeyboard = append(kb.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(r.Label, r.Action)))
	}
	return kb
}

// --- gateway.Gateway ---

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := withContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return c.api.Request(tgbotapi.NewMessage(chatID, text))
	})
	return wrap("sendMessage", err)
}

func (c *Client) SendInteractive(ctx context.Context, chatID int64, text string, rows []checklist.Row) (gateway.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard(rows)
	sent, err := withContext(ctx, func() (tgbotapi.Message, error) {
		return c.api.Send(msg)
	})
	if err != nil {
		return gateway.MessageRef{}, wrap("sendMessage", err)
	}
	ref := gateway.MessageRef{ChatID: chatID, MessageID: int64(sent.MessageID)}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}

func (c *Client) UpdateInteractive(ctx context.Context, ref gateway.MessageRef, rows []checklist.Row) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(ref.ChatID, int(ref.MessageID), keyboard(rows))
	_, err := withContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return c.api.Request(edit)
	})
	if IsNotModified(err) {
		return nil
	}
	return wrap("editMessageReplyMarkup", err)
}

func (c *Client) AckToggle(ctx context.Context, callbackID string) error {
	_, err := withContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return c.api.Request(tgbotapi.NewCallback(callbackID, ""))
	})
	return wrap("answerCallbackQuery", err)
}

// --- polling ---

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(timeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates, err := withContext(ctx, func() ([]tgbotapi.Update, error) {
		return c.api.GetUpdates(cfg)
	})
	return updates, wrap("getUpdates", err)
}

// --- internal helpers ---

// IsNotModified reports whether err is the Bot API's refusal to apply an
// edit that changes nothing.
func IsNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}

// RetryAfter returns the flood-control wait the Bot API asked for, or 0.
func RetryAfter(err error) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return 0
}

func wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("telegram %s: %w", method, err)
}

// withContext runs a Bot API call and returns early with ctx.Err() once
// ctx ends. The abandoned call is still bounded by the HTTP client timeout.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
