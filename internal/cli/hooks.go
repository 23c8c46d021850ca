package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slacklinehq/slackline/internal/config"
	"github.com/slacklinehq/slackline/internal/hook"
	"github.com/slacklinehq/slackline/internal/logger"
	"github.com/slacklinehq/slackline/internal/slack"
	"github.com/slacklinehq/slackline/internal/state"
)

var responseCmd = &cobra.Command{
	Use:   "response",
	Short: "Handle an incremental agent response event",
	Long: `Read one response event from stdin and relay it into the
conversation's Slack thread, creating the thread on first contact.
Always prints an empty JSON acknowledgment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runHook(cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, h *hook.Handler, ev hook.Event) {
			h.Response(ctx, ev)
		})
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Handle a terminal-status event",
	Long: `Read one stop event from stdin, post the terminal status into the
conversation's Slack thread and replace the attached transcript.
Always prints an empty JSON acknowledgment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runHook(cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, h *hook.Handler, ev hook.Event) {
			h.Stop(ctx, ev)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(responseCmd)
	rootCmd.AddCommand(stopCmd)
}

// runHook wires up one handler invocation. Nothing in here may fail the
// calling runtime: every exit path writes the acknowledgment and swallows
// the error behind it.
func runHook(in io.Reader, out io.Writer, run func(context.Context, *hook.Handler, hook.Event)) {
	defer hook.Ack(out)

	cfg, log, cleanup, err := setup()
	if err != nil {
		return
	}
	defer cleanup()

	ev := hook.Decode(in)

	chat, err := slack.New(slack.Config{
		Token:         cfg.SlackBotToken,
		Channel:       cfg.SlackChannelID,
		BaseURL:       cfg.SlackAPIBase,
		UploadTimeout: cfg.UploadTimeout(),
		Logger:        log,
	})
	if err != nil {
		log.Error().Err(err).Msg("Slack client unavailable")
		return
	}

	sessions := state.NewManager(
		state.NewFileStore(cfg.StateFile, cfg.Limits.MaxSessions),
		chat,
		log,
	)

	h := hook.New(hook.Options{
		Chat:          chat,
		Sessions:      sessions,
		MaxMessageLen: cfg.Limits.MaxMessageLen,
		Logger:        log,
	})

	run(context.Background(), h, ev)
}

// setup loads config and builds the logger shared by all subcommands
func setup() (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, zerolog.Nop(), func() {}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), func() {}, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	l, err := logger.New(logger.Config{
		Level:    level,
		File:     cfg.Logging.File,
		MaxSize:  cfg.Logging.MaxSize,
		MaxAge:   cfg.Logging.MaxAge,
		Compress: cfg.Logging.Compress,
	})
	if err != nil {
		return nil, zerolog.Nop(), func() {}, err
	}

	cleanup := func() {
		if err := l.Close(); err != nil {
			// Nowhere left to report this
			_ = err
		}
	}
	return cfg, l.GetZerolog(), cleanup, nil
}
