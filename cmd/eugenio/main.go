package main

import (
	"os"

	"github.com/alfredjeanlab/eugenio/internal/ui"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "eugenio <command>",
	Short: "Chat shopping-list assistant",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor(os.Stdout) {
			ui.ForceNoColor()
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "lists", Title: "Lists:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Lists
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(clearCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
