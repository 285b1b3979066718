package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/eugenio/internal/gateway"
)

// DefaultPollTimeout is the long-poll wait used when none is configured.
const DefaultPollTimeout = 30 * time.Second

// PollerConfig configures long polling.
type PollerConfig struct {
	// PollTimeout is the server-side long-poll wait. Default: 30s.
	PollTimeout time.Duration

	// Workers bounds how many events are handled at once. Default: 8.
	Workers int

	// ErrorBackoff is the pause after a failed poll. Default: 2s, doubled
	// per consecutive failure up to 1 minute.
	ErrorBackoff time.Duration
}

// Poller pulls updates from the Bot API and dispatches them as events.
type Poller struct {
	client *Client
	cfg    PollerConfig
	logger *slog.Logger
	offset int
}

// NewPoller creates a poller for client.
func NewPoller(client *Client, cfg PollerConfig, logger *slog.Logger) *Poller {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.ErrorBackoff == 0 {
		cfg.ErrorBackoff = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{client: client, cfg: cfg, logger: logger}
}

// Run polls until ctx is cancelled, handing each event to h on its own
// goroutine. Events from different users run concurrently; at most
// cfg.Workers run at once. Run waits for in-flight handlers before
// returning.
func (p *Poller) Run(ctx context.Context, h gateway.Handler) error {
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	defer g.Wait()

	backoff := p.cfg.ErrorBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, p.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := backoff
			if ra := RetryAfter(err); ra > 0 {
				wait = ra
			}
			p.logger.Error("telegram: poll failed", "err", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			backoff = min(backoff*2, time.Minute)
			continue
		}
		backoff = p.cfg.ErrorBackoff

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			ev, ok := toEvent(u)
			if !ok {
				continue
			}
			// Handlers get a context detached from shutdown so that an
			// in-flight reply is not cut off mid-way.
			hctx := context.WithoutCancel(ctx)
			g.Go(func() error {
				h.HandleEvent(hctx, ev)
				return nil
			})
		}
	}
}

// toEvent translates an update. Non-text messages, messages from bots
// and updates without a sender are dropped.
func toEvent(u tgbotapi.Update) (gateway.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.From == nil {
			return gateway.Event{}, false
		}
		ev := gateway.Event{
			Kind:       gateway.KindToggle,
			UserID:     cq.From.ID,
			ChatID:     cq.From.ID,
			Action:     cq.Data,
			CallbackID: cq.ID,
		}
		if m := cq.Message; m != nil && m.Chat != nil {
			ev.ChatID = m.Chat.ID
			ev.Message = gateway.MessageRef{ChatID: m.Chat.ID, MessageID: int64(m.MessageID)}
		}
		return ev, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.From.IsBot || m.Chat == nil || m.Text == "" {
			return gateway.Event{}, false
		}
		ev := gateway.Event{UserID: m.From.ID, ChatID: m.Chat.ID}
		if name, args, ok := gateway.ParseCommand(m.Text); ok {
			ev.Kind = gateway.KindCommand
			ev.Command = name
			ev.Args = args
		} else {
			ev.Kind = gateway.KindText
			ev.Text = m.Text
		}
		return ev, true
	}
	return gateway.Event{}, false
}
