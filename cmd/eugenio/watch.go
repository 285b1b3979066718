package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/eugenio/internal/events"
	"github.com/alfredjeanlab/eugenio/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow live list activity from the event bus",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: set EUGENIO_NATS_URL or --nats-url")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(events.TopicAll)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-ch:
				if !ok {
					return nil
				}
				printEvent(os.Stdout, ev)
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("nats-url", os.Getenv("EUGENIO_NATS_URL"), "NATS server URL")
}

// printEvent writes one line describing ev.
func printEvent(w io.Writer, ev events.Event) {
	ts := ui.RenderMuted(ev.At.Local().Format("15:04:05"))
	owner := ui.RenderAccent(fmt.Sprintf("%d", ev.OwnerID))

	switch ev.Topic {
	case events.TopicItemAdded:
		fmt.Fprintf(w, "%s %s added %q\n", ts, owner, ev.Name)
	case events.TopicItemChecked:
		state := "unchecked"
		if ev.Checked != nil && *ev.Checked {
			state = ui.RenderDone("checked")
		}
		fmt.Fprintf(w, "%s %s %s %q\n", ts, owner, state, ev.Name)
	case events.TopicListCleared:
		fmt.Fprintf(w, "%s %s %s\n", ts, owner, ui.RenderWarn("cleared the list"))
	case events.TopicModeEntered:
		fmt.Fprintf(w, "%s %s started a list\n", ts, owner)
	case events.TopicModeExited:
		fmt.Fprintf(w, "%s %s finished a list\n", ts, owner)
	default:
		fmt.Fprintf(w, "%s %s %s\n", ts, owner, ev.Topic)
	}
}
