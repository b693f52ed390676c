package cli

import (
	"fmt"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Checks the config file, touch panel, backlight file, catalog and adb for better troubleshooting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := configPath
		if path == "" {
			path = config.Path()
		}

		response := commands.DoctorCommand(commands.DoctorRequest{
			Version:     GetVersion(),
			ConfigPath:  path,
			Device:      cfg.Input.Device,
			NameFilter:  cfg.Input.NameFilter,
			Backlight:   cfg.Power.Backlight,
			CatalogPath: cfg.Gesture.Catalog,
			Listen:      cfg.Server.Listen,
		})
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
