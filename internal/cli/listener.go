package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/slacklinehq/slackline/internal/listener"
	"github.com/slacklinehq/slackline/internal/slack"
	"github.com/slacklinehq/slackline/internal/state"
)

var (
	listenerInterval  int
	listenerInjectCmd string
)

var listenerCmd = &cobra.Command{
	Use:   "listener",
	Short: "Manage the Slack reply listener",
	Long: `The listener watches the most recent conversation thread for human
replies and injects them into the agent via the configured command.`,
}

var listenerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the reply listener",
	Long: `Run the reply listener in the foreground until SIGTERM or SIGINT.
Use a service manager (or shell backgrounding) to daemonize it.`,
	RunE: runListenerStart,
}

var listenerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running listener",
	RunE:  runListenerStop,
}

var listenerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the listener is running",
	RunE:  runListenerStatus,
}

func init() {
	listenerStartCmd.Flags().IntVar(&listenerInterval, "interval", 0, "polling interval in seconds (default from config)")
	listenerStartCmd.Flags().StringVar(&listenerInjectCmd, "inject-cmd", "", "shell command receiving each reply on stdin (default from config)")

	listenerCmd.AddCommand(listenerStartCmd)
	listenerCmd.AddCommand(listenerStopCmd)
	listenerCmd.AddCommand(listenerStatusCmd)
	rootCmd.AddCommand(listenerCmd)
}

func runListenerStart(cmd *cobra.Command, args []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if listener.IsRunning(cfg.Listener.PIDFile) {
		return fmt.Errorf("listener is already running (pid file: %s)", cfg.Listener.PIDFile)
	}

	interval := cfg.PollInterval()
	if listenerInterval > 0 {
		interval = time.Duration(listenerInterval) * time.Second
	}
	injectCmd := cfg.Listener.InjectCommand
	if listenerInjectCmd != "" {
		injectCmd = listenerInjectCmd
	}
	if injectCmd == "" {
		return fmt.Errorf("no inject command configured (listener.inject_command or --inject-cmd)")
	}

	chat, err := slack.New(slack.Config{
		Token:         cfg.SlackBotToken,
		Channel:       cfg.SlackChannelID,
		BaseURL:       cfg.SlackAPIBase,
		UploadTimeout: cfg.UploadTimeout(),
		Logger:        log,
	})
	if err != nil {
		return err
	}

	sessions := state.NewManager(
		state.NewFileStore(cfg.StateFile, cfg.Limits.MaxSessions),
		chat,
		log,
	)

	l := listener.New(listener.Options{
		Chat:      chat,
		Sessions:  sessions,
		Injector:  listener.NewCommandInjector(injectCmd, cfg.InjectTimeout(), log),
		StatePath: cfg.Listener.StateFile,
		Interval:  interval,
		Logger:    log,
	})

	if err := listener.WritePIDFile(cfg.Listener.PIDFile); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	defer listener.RemovePIDFile(cfg.Listener.PIDFile)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Listener running (pid %d, interval %s)\n", os.Getpid(), interval)
	return l.Run(ctx)
}

func runListenerStop(cmd *cobra.Command, args []string) error {
	cfg, _, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	pid, err := listener.ReadPID(cfg.Listener.PIDFile)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Listener is not running.")
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal listener: %w", err)
	}

	// Give it a moment to exit cleanly
	for i := 0; i < 20; i++ {
		time.Sleep(250 * time.Millisecond)
		if !listener.IsRunning(cfg.Listener.PIDFile) {
			fmt.Fprintln(cmd.OutOrStdout(), "Listener stopped.")
			return nil
		}
	}

	return fmt.Errorf("listener (pid %d) did not exit in time", pid)
}

func runListenerStatus(cmd *cobra.Command, args []string) error {
	cfg, _, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if pid, err := listener.ReadPID(cfg.Listener.PIDFile); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Listener is running (pid %d).\n", pid)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Listener is not running.")
	}
	return nil
}
