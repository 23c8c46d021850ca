package listener

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slacklinehq/slackline/internal/slack"
	"github.com/slacklinehq/slackline/internal/state"
)

// ReplyFetcher is the slice of the Slack client the listener needs
type ReplyFetcher interface {
	AuthTest(ctx context.Context) (string, error)
	ThreadReplies(ctx context.Context, threadTS, oldest string) ([]slack.Message, error)
}

// Injector delivers a human reply back to the agent
type Injector interface {
	Inject(ctx context.Context, text string) error
}

// Listener polls the most recent conversation thread for human replies and
// injects them into the agent. One goroutine, one tick at a time.
type Listener struct {
	chat      ReplyFetcher
	sessions  *state.Manager
	injector  Injector
	statePath string
	interval  time.Duration
	logger    zerolog.Logger
}

// Options configures a Listener
type Options struct {
	Chat      ReplyFetcher
	Sessions  *state.Manager
	Injector  Injector
	StatePath string
	Interval  time.Duration
	Logger    zerolog.Logger
}

// New creates a reply listener
func New(opts Options) *Listener {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Listener{
		chat:      opts.Chat,
		sessions:  opts.Sessions,
		injector:  opts.Injector,
		statePath: opts.StatePath,
		interval:  interval,
		logger:    opts.Logger.With().Str("component", "listener").Logger(),
	}
}

// Run polls until the context is cancelled
func (l *Listener) Run(ctx context.Context) error {
	// Resolve our own identity once, to skip the bot's messages. Failure is
	// tolerated: bot_id filtering still applies.
	botUserID, err := l.chat.AuthTest(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("Failed to resolve bot user id")
	}

	l.logger.Info().
		Dur("interval", l.interval).
		Str("bot_user_id", botUserID).
		Msg("Listener started")

	seen := loadWatermarks(l.statePath)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Listener stopped")
			return nil
		case <-ticker.C:
			if l.poll(ctx, botUserID, seen) {
				if err := saveWatermarks(l.statePath, seen); err != nil {
					l.logger.Error().Err(err).Msg("Failed to persist listener state")
				}
			}
		}
	}
}

// poll fetches new replies in the most recent thread and injects the human
// ones. Returns true when a watermark advanced.
func (l *Listener) poll(ctx context.Context, botUserID string, seen watermarks) bool {
	_, threadTS, ok := l.sessions.MostRecentThread()
	if !ok {
		return false
	}

	// Default the watermark to the root ts so the root message is skipped on
	// the first poll.
	last, ok := seen[threadTS]
	if !ok {
		last = threadTS
	}

	replies, err := l.chat.ThreadReplies(ctx, threadTS, last)
	if err != nil {
		l.logger.Warn().Err(err).Str("thread_ts", threadTS).Msg("Failed to fetch replies")
		return false
	}

	advanced := false
	for _, msg := range replies {
		// oldest is inclusive, so the watermark message comes back again
		if msg.TS <= last || msg.TS == threadTS {
			continue
		}

		seen[threadTS] = msg.TS
		last = msg.TS
		advanced = true

		if msg.BotID != "" || (botUserID != "" && msg.User == botUserID) {
			continue
		}

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}

		l.logger.Info().
			Str("thread_ts", threadTS).
			Str("reply_ts", msg.TS).
			Msg("New human reply")

		if err := l.injector.Inject(ctx, text); err != nil {
			l.logger.Error().Err(err).Msg("Failed to inject reply")
		}
	}

	return advanced
}
