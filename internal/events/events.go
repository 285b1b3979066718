// Package events publishes shopping-list activity to an event bus so that
// operators (and `eugenio watch`) can follow what users do.
package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicItemAdded   = "eugenio.item.added"
	TopicItemChecked = "eugenio.item.checked"
	TopicListCleared = "eugenio.list.cleared"
	TopicModeEntered = "eugenio.mode.entered"
	TopicModeExited  = "eugenio.mode.exited"

	// TopicAll matches every eugenio topic.
	TopicAll = "eugenio.>"
)

// Event is the payload published on every topic. Fields that do not
// apply to a topic are left empty.
type Event struct {
	Topic   string    `json:"topic"`
	OwnerID int64     `json:"owner_id"`
	ItemID  string    `json:"item_id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Checked *bool     `json:"checked,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers decoded events for topic on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Event, func(), error)
	Close() error
}
