// Package bot is the conversation controller: it turns inbound chat
// events into list-store calls and replies.
//
// A user is Collecting while the mode tracker has them, Idle otherwise.
// Only Collecting users can add items; showing, toggling and clearing
// work in either state.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/checklist"
	"github.com/alfredjeanlab/eugenio/internal/events"
	"github.com/alfredjeanlab/eugenio/internal/gateway"
	"github.com/alfredjeanlab/eugenio/internal/mode"
	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/store"
)

// command is what a chat command does.
type command int

const (
	cmdHelp command = iota + 1
	cmdEnter
	cmdExit
	cmdShow
	cmdClear
)

// commands maps command names (Portuguese names plus English
// aliases) to actions.
var commands = map[string]command{
	"start":   cmdHelp,
	"help":    cmdHelp,
	"ajuda":   cmdHelp,
	"lista":   cmdEnter,
	"add":     cmdEnter,
	"fim":     cmdExit,
	"done":    cmdExit,
	"mercado": cmdShow,
	"list":    cmdShow,
	"limpar":  cmdClear,
	"clear":   cmdClear,
}

// failureReplyTimeout bounds delivery of the store-failure reply, which is
// sent after the event's own budget may have run out.
const failureReplyTimeout = 10 * time.Second

// Options configures a Controller.
type Options struct {
	Store     store.Store
	Modes     *mode.Tracker
	Gateway   gateway.Gateway
	Publisher events.Publisher // optional
	Messages  *Messages        // optional; DefaultMessages when nil
	Logger    *slog.Logger     // optional

	// EventTimeout bounds the store and gateway work for one event.
	// Zero means no bound beyond the caller's context.
	EventTimeout time.Duration
}

// Controller implements gateway.Handler.
type Controller struct {
	store   store.Store
	modes   *mode.Tracker
	gw      gateway.Gateway
	pub     events.Publisher
	msgs    Messages
	logger  *slog.Logger
	timeout time.Duration
}

var _ gateway.Handler = (*Controller)(nil)

// New creates a controller. Store, Modes and Gateway are required.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil || opts.Modes == nil || opts.Gateway == nil {
		return nil, errors.New("bot: store, modes and gateway are required")
	}
	c := &Controller{
		store:   opts.Store,
		modes:   opts.Modes,
		gw:      opts.Gateway,
		pub:     opts.Publisher,
		msgs:    DefaultMessages(),
		logger:  opts.Logger,
		timeout: opts.EventTimeout,
	}
	if opts.Messages != nil {
		c.msgs = *opts.Messages
	}
	if c.pub == nil {
		c.pub = events.NoopPublisher{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// HandleEvent processes one inbound event. It never panics on store or
// gateway failures; those are logged and, for store failures, reported
// to the user.
func (c *Controller) HandleEvent(ctx context.Context, ev gateway.Event) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var err error
	switch ev.Kind {
	case gateway.KindCommand:
		err = c.handleCommand(ctx, ev)
	case gateway.KindText:
		err = c.handleText(ctx, ev)
	case gateway.KindToggle:
		err = c.handleToggle(ctx, ev)
	default:
		c.logger.Warn("bot: unknown event kind", "kind", ev.Kind, "user", ev.UserID)
		return
	}
	if err == nil {
		return
	}

	var sErr *storeError
	if errors.As(err, &sErr) {
		c.logger.Error("bot: store call failed",
			"event", ev.Kind.String(),
			"user", ev.UserID,
			"class", store.Classify(sErr.err),
			"err", sErr.err,
		)
		// The event context may be the one that just expired.
		replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureReplyTimeout)
		defer cancel()
		if err := c.gw.SendText(replyCtx, ev.ChatID, c.msgs.StoreFailure); err != nil {
			c.logger.Error("bot: failure reply not delivered", "user", ev.UserID, "err", err)
		}
		return
	}
	c.logger.Error("bot: reply not delivered", "event", ev.Kind.String(), "user", ev.UserID, "err", err)
}

// storeError marks an error as coming from the list store, as opposed to
// the gateway.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return &storeError{err: err}
}

func (c *Controller) handleCommand(ctx context.Context, ev gateway.Event) error {
	cmd, ok := commands[ev.Command]
	if !ok {
		c.logger.Debug("bot: ignoring unknown command", "command", ev.Command, "user", ev.UserID)
		return nil
	}

	switch cmd {
	case cmdHelp:
		return c.gw.SendText(ctx, ev.ChatID, c.msgs.Help)

	case cmdEnter:
		c.modes.Enter(ev.UserID)
		c.publish(ctx, events.Event{Topic: events.TopicModeEntered, OwnerID: ev.UserID})
		return c.gw.SendText(ctx, ev.ChatID, c.msgs.EnterMode)

	case cmdExit:
		// Items were persisted as they arrived; this only flips the mode.
		c.modes.Exit(ev.UserID)
		c.publish(ctx, events.Event{Topic: events.TopicModeExited, OwnerID: ev.UserID})
		return c.gw.SendText(ctx, ev.ChatID, c.msgs.ExitMode)

	case cmdShow:
		return c.showList(ctx, ev)

	case cmdClear:
		if err := c.store.ClearAll(ctx, ev.UserID); err != nil {
			return storeErr(err)
		}
		c.publish(ctx, events.Event{Topic: events.TopicListCleared, OwnerID: ev.UserID})
		return c.gw.SendText(ctx, ev.ChatID, c.msgs.Cleared)
	}
	return nil
}

func (c *Controller) handleText(ctx context.Context, ev gateway.Event) error {
	if !c.modes.IsActive(ev.UserID) {
		return nil
	}
	name, err := model.NormalizeName(ev.Text)
	if err != nil {
		c.logger.Debug("bot: ignoring blank item", "user", ev.UserID)
		return nil
	}

	it, err := c.store.AddItem(ctx, ev.UserID, name)
	if err != nil {
		return storeErr(err)
	}
	c.publish(ctx, events.Event{Topic: events.TopicItemAdded, OwnerID: ev.UserID, ItemID: it.ID, Name: it.Name})
	return c.gw.SendText(ctx, ev.ChatID, fmt.Sprintf(c.msgs.ItemAdded, it.Name))
}

func (c *Controller) showList(ctx context.Context, ev gateway.Event) error {
	items, err := c.store.ListItems(ctx, ev.UserID)
	if err != nil {
		return storeErr(err)
	}
	if len(items) == 0 {
		return c.gw.SendText(ctx, ev.ChatID, c.msgs.EmptyList)
	}
	_, err = c.gw.SendInteractive(ctx, ev.ChatID, c.msgs.ListHeader, checklist.Render(items))
	return err
}

// handleToggle flips one item and redraws the checklist in place.
//
// The flip is a compare-and-swap against the value just read, so two
// racing toggles of the same item cannot both apply; the loser becomes a
// no-op and the redraw shows whatever the store now holds. An item that
// vanished (for example cleared from another device) simply drops out of
// the redraw.
func (c *Controller) handleToggle(ctx context.Context, ev gateway.Event) error {
	if err := c.gw.AckToggle(ctx, ev.CallbackID); err != nil {
		c.logger.Warn("bot: toggle ack failed", "user", ev.UserID, "err", err)
	}

	id, ok := checklist.ParseAction(ev.Action)
	if !ok {
		c.logger.Warn("bot: ignoring malformed action", "action", ev.Action, "user", ev.UserID)
		return nil
	}

	items, err := c.store.ListItems(ctx, ev.UserID)
	if err != nil {
		return storeErr(err)
	}

	if it := model.FindItem(items, id); it == nil {
		c.logger.Info("bot: toggle target not found", "item", id, "user", ev.UserID)
		if ev.ChatID != ev.UserID {
			// In a shared chat the pressed keyboard may belong to someone
			// else; redrawing it with this user's items would leak them.
			return nil
		}
	} else {
		want := !it.Checked
		swapped, err := c.store.SwapChecked(ctx, id, it.Checked, want)
		if err != nil {
			return storeErr(err)
		}
		if swapped {
			c.publish(ctx, events.Event{
				Topic: events.TopicItemChecked, OwnerID: ev.UserID,
				ItemID: id, Name: it.Name, Checked: &want,
			})
		} else {
			c.logger.Info("bot: toggle lost race", "item", id, "user", ev.UserID)
		}
	}

	items, err = c.store.ListItems(ctx, ev.UserID)
	if err != nil {
		return storeErr(err)
	}
	return c.gw.UpdateInteractive(ctx, ev.Message, checklist.Render(items))
}

func (c *Controller) publish(ctx context.Context, ev events.Event) {
	if err := c.pub.Publish(ctx, ev); err != nil {
		c.logger.Warn("bot: event publish failed", "topic", ev.Topic, "err", err)
	}
}
