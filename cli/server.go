package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/config"
	"github.com/mobile-next/sweep2sleep/daemon"
	"github.com/mobile-next/sweep2sleep/devices"
	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/power"
	"github.com/mobile-next/sweep2sleep/server"
	"github.com/mobile-next/sweep2sleep/service"
	"github.com/mobile-next/sweep2sleep/types"
	"github.com/mobile-next/sweep2sleep/utils"
	"github.com/spf13/cobra"
)

// shutdownHook is shared with main so a signal tears down the same
// resources as server.shutdown.
var shutdownHook = utils.NewShutdownHook()

// SetShutdownHook installs the hook list main runs on SIGINT/SIGTERM.
func SetShutdownHook(h *utils.ShutdownHook) {
	shutdownHook = h
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the sweep2sleep daemon.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gesture daemon",
	Long: `Opens the touch panel, starts the gesture worker and serves the
JSON-RPC control API on /rpc and /ws.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

// runCmd is the top-level shorthand for server start.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gesture daemon (same as server start)",
	Args:  cobra.NoArgs,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// flags win over the config file
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen, _ = cmd.Flags().GetString("listen")
	}
	if cmd.Flags().Changed("cors") {
		cfg.Server.CORS, _ = cmd.Flags().GetBool("cors")
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = config.DefaultListenAddress
	}

	listen := cfg.Server.Listen
	if !strings.Contains(listen, ":") {
		listen = ":" + listen
	}
	if !utils.IsAddrAvailable(listen) {
		return fmt.Errorf("%s is already in use, is another sweep2sleep running?", cfg.Server.Listen)
	}

	// GetBool cannot fail for defined flags
	isDaemon, _ := cmd.Flags().GetBool("daemon")

	if isDaemon && !daemon.IsChild() {
		_, err := daemon.Daemonize()
		if err != nil {
			return fmt.Errorf("failed to start daemon: %w", err)
		}

		fmt.Printf("Server daemon spawned, attempting to listen on %s\n", cfg.Server.Listen)
		return nil
	}

	return startServer(cfg)
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the running daemon",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := daemon.KillServer(daemonAddr())
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// openInput resolves the configured touch panel. A missing panel is not
// fatal: events can still be injected over RPC.
func openInput(cfg config.InputConfig) *input.Device {
	path := cfg.Device
	if path == "" {
		found, err := input.FindDevice(cfg.NameFilter)
		if err != nil {
			utils.Warn("no touch panel found: %v", err)
			return nil
		}
		path = found
	}

	dev, err := input.OpenDevice(path)
	if err != nil {
		utils.Warn("failed to open touch panel: %v", err)
		return nil
	}
	utils.Info("reading touch events from %s (%s)", dev.Path(), dev.Name())
	return dev
}

// debugEnabled reports whether the daemon starts with diagnostic logging,
// either from gesture.debug or from --verbose.
func debugEnabled(cfg config.Config) bool {
	return cfg.Gesture.Debug || utils.IsVerbose()
}

func startServer(cfg config.Config) error {
	catalog, err := commands.LoadCatalog(cfg.Gesture.Catalog)
	if err != nil {
		return err
	}

	gate, err := gesture.ParseGate(cfg.Gesture.Gate)
	if err != nil {
		return err
	}

	action, err := devices.NewAction(cfg.Action.Kind, cfg.Action.Serial, cfg.Action.Command)
	if err != nil {
		return err
	}

	dev := openInput(cfg.Input)
	var inputInfo *types.InputDevice
	if dev != nil {
		inputInfo = &types.InputDevice{Path: dev.Path(), Name: dev.Name()}
		shutdownHook.Register("input", dev.Close)
	}

	svc, err := service.New(service.Options{
		Catalog:     catalog,
		Mask:        cfg.Gesture.Mask,
		Debug:       debugEnabled(cfg),
		Gate:        gate,
		Action:      action,
		HistorySize: cfg.History.Size,
		Version:     GetVersion(),
		Input:       inputInfo,
	})
	if err != nil {
		_ = shutdownHook.Shutdown()
		return err
	}
	utils.SetVerbose(svc.Settings().Debug())
	commands.SetService(svc)
	shutdownHook.Register("service", func() error {
		svc.Close()
		return nil
	})

	srv := server.New(server.Options{
		Addr:       cfg.Server.Listen,
		EnableCORS: cfg.Server.CORS,
		Version:    GetVersion(),
	})
	if err := svc.OnTrigger(srv.Hub().Broadcast); err != nil {
		_ = shutdownHook.Shutdown()
		return fmt.Errorf("failed to subscribe websocket push: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdownHook.Register("workers", func() error {
		cancel()
		return nil
	})

	go func() {
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			utils.Error("gesture worker stopped: %v", err)
		}
	}()

	if dev != nil {
		coalescer := input.NewCoalescer(func(ev input.Event) {
			svc.Post(ev)
		})
		go func() {
			if err := dev.Run(ctx, coalescer); err != nil && !errors.Is(err, context.Canceled) {
				utils.Error("touch panel reader stopped: %v", err)
			}
		}()
	}

	if cfg.Power.Backlight != "" {
		watcher := power.NewBacklightWatcher(cfg.Power.Backlight, cfg.Power.PollInterval, svc.SetScreen)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				utils.Error("backlight watcher stopped: %v", err)
			}
		}()
	}

	utils.Info("sweep2sleep %s (driver %s), mask %d, action %s", GetVersion(), gesture.DriverVersion, svc.Settings().Mask(), action.Name())

	err = srv.ListenAndServe(ctx)
	if serr := shutdownHook.Shutdown(); serr != nil && err == nil {
		err = serr
	}
	return err
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(runCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	for _, cmd := range []*cobra.Command{serverStartCmd, runCmd} {
		cmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
		cmd.Flags().Bool("cors", false, "Enable CORS support")
		cmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	}

	// server kill flags
	addServerFlag(serverKillCmd)
}
