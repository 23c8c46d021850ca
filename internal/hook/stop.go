package hook

import (
	"context"
	"fmt"
)

// statusPresentation maps a terminal status to its icon and human text
type statusPresentation struct {
	Icon string
	Text string
}

var statusPresentations = map[string]statusPresentation{
	"completed": {Icon: "✅", Text: "Agent finished"},
	"aborted":   {Icon: "⏹️", Text: "Agent stopped"},
	"error":     {Icon: "❌", Text: "Agent hit an error"},
}

// statusMessage renders a terminal status for posting. Unknown statuses get
// a generic template rather than an error.
func statusMessage(status string) string {
	if p, ok := statusPresentations[status]; ok {
		return fmt.Sprintf("%s %s", p.Icon, p.Text)
	}
	return fmt.Sprintf("ℹ️ Session ended: %s", status)
}

// Stop relays a terminal-status event: posts the status as a thread reply,
// then replaces the transcript attached to the thread root. A missing
// conversation id or status is a silent no-op.
func (h *Handler) Stop(ctx context.Context, ev Event) {
	if ev.ConversationID == "" || ev.Status == "" {
		h.logger.Debug().Msg("Stop event without status or conversation id, skipping")
		return
	}

	logger := h.logger.With().
		Str("conversation_id", ev.ConversationID).
		Str("status", ev.Status).
		Logger()

	// If the stop is the first event of the session, the thread is created
	// here, titled from the transcript's first user query when available.
	title, ok := titleFromTranscript(ev.TranscriptPath)
	if !ok {
		title = genericTitle
	}
	threadTS, err := h.sessions.EnsureThread(ctx, ev.ConversationID, title)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to ensure thread")
		return
	}

	if _, err := h.chat.PostMessage(ctx, statusMessage(ev.Status), threadTS); err != nil {
		logger.Error().Err(err).Msg("Failed to post status")
	}

	// The transcript attaches to the thread root, not the status reply.
	h.replaceTranscript(ctx, ev.ConversationID, ev.TranscriptPath, threadTS)
}
