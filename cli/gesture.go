package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/config"
	"github.com/mobile-next/sweep2sleep/daemon"
	"github.com/spf13/cobra"
)

// addServerFlag adds --server to commands that talk to a running daemon.
func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverAddr, "server", "", fmt.Sprintf("Address of the running daemon (default: server.listen from config, or %s)", config.DefaultListenAddress))
}

// daemonAddr picks --server, then the configured listen address.
func daemonAddr() string {
	if serverAddr != "" {
		return serverAddr
	}
	if cfg, err := loadConfig(); err == nil && cfg.Server.Listen != "" {
		return cfg.Server.Listen
	}
	return config.DefaultListenAddress
}

// callDaemon runs one RPC and prints the result in the CommandResponse
// envelope used by the offline commands.
func callDaemon(method string, params interface{}) error {
	raw, err := daemon.Call(daemonAddr(), method, params)
	if err != nil {
		response := commands.NewErrorResponse(err)
		printJson(response)
		return err
	}

	var data interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	printJson(commands.NewSuccessResponse(data))
	return nil
}

// parseSwitch accepts on/off style arguments.
func parseSwitch(arg string) (bool, error) {
	switch arg {
	case "on", "true", "1", "enable":
		return true, nil
	case "off", "false", "0", "disable":
		return false, nil
	default:
		return false, fmt.Errorf("expected 'on' or 'off', got '%s'", arg)
	}
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Read or change the enabled gesture mask",
}

var maskGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the enabled and implemented gesture masks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callDaemon("mask_get", nil)
	},
}

var maskSetCmd = &cobra.Command{
	Use:   "set [mask]",
	Short: "Enable gestures by bitmask",
	Long: `Sets the enabled gesture mask as a decimal integer. Bits for gestures
that are not implemented are cleared; the effective mask is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callDaemon("mask_set", commands.MaskSetRequest{Mask: args[0]})
	},
}

var debugCmd = &cobra.Command{
	Use:   "debug [on|off]",
	Short: "Toggle diagnostic logging in the daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		return callDaemon("debug_set", commands.DebugSetRequest{Enabled: on})
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen [on|off]",
	Short: "Report a display power change to the daemon",
	Long: `Tells the daemon the display turned on or off. Use this when no
backlight file is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		return callDaemon("screen_set", commands.ScreenSetRequest{On: on})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon state, masks and counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callDaemon("status", nil)
	},
}

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "List recently fired gestures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callDaemon("triggers", nil)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and driver versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printJson(commands.VersionCommand(GetVersion()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(maskCmd)
	maskCmd.AddCommand(maskGetCmd)
	maskCmd.AddCommand(maskSetCmd)

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(triggersCmd)
	rootCmd.AddCommand(versionCmd)

	for _, cmd := range []*cobra.Command{maskGetCmd, maskSetCmd, debugCmd, screenCmd, statusCmd, triggersCmd} {
		addServerFlag(cmd)
	}
}
