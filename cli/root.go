package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/sweep2sleep/config"
	"github.com/mobile-next/sweep2sleep/utils"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X .../cli.version=..."
var version = "dev"

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sweep2sleep",
	Short: "Touch panel gesture daemon that puts the display to sleep",
	Long: `sweep2sleep watches a touch panel for configured swipe and double tap
gestures and runs an action, such as pressing the power key, when one
completes.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default: %s)", config.Path()))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		utils.Error("failed to encode output: %v", err)
		return
	}
	fmt.Println(string(jsonData))
}
