// Package gateway defines the contract between the conversation logic and
// a chat transport.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode"

	"github.com/alfredjeanlab/eugenio/internal/checklist"
)

// Kind distinguishes inbound events.
type Kind int

const (
	KindCommand Kind = iota + 1 // "/name args"
	KindText                    // free text
	KindToggle                  // button press on an interactive message
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindToggle:
		return "toggle"
	}
	return "unknown"
}

// MessageRef identifies a previously sent interactive message.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Event is one inbound user action.
type Event struct {
	Kind   Kind
	UserID int64 // stable chat identity; owner of list items
	ChatID int64 // where replies go

	Command string // KindCommand: lower-cased name without "/" or "@bot"
	Args    string // KindCommand: text after the command
	Text    string // KindText: raw message text

	Action     string     // KindToggle: action token from the pressed row
	CallbackID string     // KindToggle: transport handle to acknowledge
	Message    MessageRef // KindToggle: message carrying the keyboard
}

// Gateway sends responses back to users.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendInteractive(ctx context.Context, chatID int64, text string, rows []checklist.Row) (MessageRef, error)
	// UpdateInteractive replaces the rows of an existing message in place.
	UpdateInteractive(ctx context.Context, ref MessageRef, rows []checklist.Row) error
	// AckToggle tells the transport a button press was received.
	AckToggle(ctx context.Context, callbackID string) error
}

// Handler consumes inbound events.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// Recover wraps h so that a panic while handling one event is logged
// instead of taking down the process.
func Recover(h Handler, logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, ev Event) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered in event handler",
					"event", ev.Kind.String(),
					"user", ev.UserID,
					"panic", fmt.Sprintf("%v", v),
					"stack", string(debug.Stack()),
				)
			}
		}()
		h.HandleEvent(ctx, ev)
	})
}

// ParseCommand splits "/Name@bot rest" into ("name", "rest"). The name
// ends at the first whitespace of any kind. ok is false when text is not
// a command.
func ParseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	head, rest := text[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]
	}
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
