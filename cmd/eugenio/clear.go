package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/eugenio/internal/store"
	"github.com/alfredjeanlab/eugenio/internal/ui"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:     "clear <user-id>",
	Short:   "Delete every item on a user's list",
	GroupID: "lists",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseOwner(args[0])
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear the list of %d without --yes", owner)
		}
		return withStore(func(ctx context.Context, st store.Store) error {
			if err := st.ClearAll(ctx, owner); err != nil {
				return err
			}
			fmt.Printf("%s list of %s cleared\n", ui.RenderWarn("✗"), ui.RenderAccent(args[0]))
			return nil
		})
	},
}

func init() {
	clearCmd.Flags().Bool("yes", false, "confirm the deletion")
}
