package cli

import (
	"fmt"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [trace]",
	Short: "Evaluate a recorded touch trace offline",
	Long: `Feeds a trace file through a fresh gesture engine on a simulated clock
and prints the gestures that fired. No daemon is needed and no action runs.

Trace lines: x N, y N, point X Y, lift, slot [N], on, off, wait DURATION.
Lines starting with # are comments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		req := commands.ReplayRequest{
			TracePath:   args[0],
			CatalogPath: cfg.Gesture.Catalog,
			Mask:        cfg.Gesture.Mask,
			Gate:        cfg.Gesture.Gate,
		}
		if replayCatalog != "" {
			req.CatalogPath = replayCatalog
		}
		if replayGate != "" {
			req.Gate = replayGate
		}
		if replayMask != "" {
			m, err := gesture.ParseMask(replayMask)
			if err != nil {
				return err
			}
			req.Mask = int(m)
		}

		response := commands.ReplayCommand(req)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective gesture geometry",
	Long: `Prints the geometry catalog in the same ini format gesture.catalog
accepts, so it can be saved and edited.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Gesture.Catalog
		if replayCatalog != "" {
			path = replayCatalog
		}

		response := commands.CatalogCommand(path)
		if response.Status == "error" {
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}
		fmt.Print(response.Data.(string))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(catalogCmd)

	replayCmd.Flags().StringVar(&replayCatalog, "catalog", "", "geometry catalog file (default: gesture.catalog from config)")
	replayCmd.Flags().StringVar(&replayMask, "mask", "", "gesture mask to replay with (default: gesture.mask from config)")
	replayCmd.Flags().StringVar(&replayGate, "gate", "", "screen gate, screen-on or screen-off")

	catalogCmd.Flags().StringVar(&replayCatalog, "catalog", "", "geometry catalog file (default: gesture.catalog from config)")
}
