package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/checklist"
	"github.com/alfredjeanlab/eugenio/internal/config"
	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/store"
	"github.com/alfredjeanlab/eugenio/internal/ui"
	"github.com/spf13/cobra"
)

// withStore loads configuration, opens the store, and runs fn with it.
func withStore(fn func(ctx context.Context, st store.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, st)
}

func parseOwner(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

var itemsCmd = &cobra.Command{
	Use:     "items [user-id]",
	Short:   "List shopping-list items, for one user or everyone",
	GroupID: "lists",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st store.Store) error {
			var (
				items []*model.Item
				err   error
			)
			if len(args) == 1 {
				owner, perr := parseOwner(args[0])
				if perr != nil {
					return perr
				}
				items, err = st.ListItems(ctx, owner)
			} else {
				items, err = st.ListAllItems(ctx)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printItemsJSON(os.Stdout, items)
			}
			printItemsTable(os.Stdout, items)
			return nil
		})
	},
}

func printItemsJSON(w io.Writer, items []*model.Item) error {
	if items == nil {
		items = []*model.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(items)
}

func printItemsTable(w io.Writer, items []*model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("No items."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tITEM\tID\tADDED")
	for _, it := range items {
		label := checklist.Label(it)
		if it.Checked {
			label = ui.RenderDone(label)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			it.OwnerID, label, ui.RenderMuted(it.ID), it.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
