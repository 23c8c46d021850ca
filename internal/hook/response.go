package hook

import (
	"context"
	"strings"
)

// Response relays an incremental agent message into the conversation's
// thread, creating the thread on first contact with the message text as its
// title. Empty text or a missing conversation id is a silent no-op.
func (h *Handler) Response(ctx context.Context, ev Event) {
	text := strings.TrimSpace(ev.Text)
	if ev.ConversationID == "" || text == "" {
		h.logger.Debug().Msg("Response event without text or conversation id, skipping")
		return
	}

	logger := h.logger.With().Str("conversation_id", ev.ConversationID).Logger()

	// The ensure is idempotent, so only the very first response's text
	// actually becomes the thread title.
	threadTS, err := h.sessions.EnsureThread(ctx, ev.ConversationID, titleFromText(text))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to ensure thread")
		return
	}

	if _, err := h.chat.PostMessage(ctx, truncate(text, h.maxMessageLen), threadTS); err != nil {
		logger.Error().Err(err).Msg("Failed to post response")
		return
	}

	logger.Debug().Str("thread_ts", threadTS).Msg("Response relayed")
}

// titleFromText derives a thread title from message text: the first line,
// capped at titleMaxLen.
func titleFromText(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return capTitle(strings.TrimSpace(line))
}
