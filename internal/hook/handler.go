package hook

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slacklinehq/slackline/internal/state"
)

// truncationSuffix marks messages cut down to the platform limit
const truncationSuffix = "… (truncated)"

// genericTitle is used when a thread must be created before any response
// text or transcript exists to derive a title from.
const genericTitle = "Agent Session"

// ChatClient is the slice of the Slack client the handlers need
type ChatClient interface {
	PostMessage(ctx context.Context, text, threadTS string) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
	GetUploadURL(ctx context.Context, filename string, length int) (uploadURL, fileID string, err error)
	UploadToURL(ctx context.Context, uploadURL string, content []byte) error
	CompleteUpload(ctx context.Context, fileID, title, threadTS string) error
}

// Handler reacts to a single agent lifecycle event. It never returns an
// error: failures are logged and the invocation ends quietly, the next event
// gets a fresh chance.
type Handler struct {
	chat          ChatClient
	sessions      *state.Manager
	maxMessageLen int
	logger        zerolog.Logger
	now           func() time.Time
}

// Options configures a Handler
type Options struct {
	Chat          ChatClient
	Sessions      *state.Manager
	MaxMessageLen int
	Logger        zerolog.Logger
}

// New creates an event handler
func New(opts Options) *Handler {
	maxLen := opts.MaxMessageLen
	if maxLen <= 0 {
		maxLen = 3000
	}
	return &Handler{
		chat:          opts.Chat,
		sessions:      opts.Sessions,
		maxMessageLen: maxLen,
		logger:        opts.Logger.With().Str("component", "hook").Logger(),
		now:           time.Now,
	}
}

// truncate cuts text down to max runes, appending the truncation suffix
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + truncationSuffix
}
