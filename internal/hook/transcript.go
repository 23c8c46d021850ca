package hook

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

// replaceTranscript swaps the conversation's attached transcript for the
// current contents of path, keeping at most one live transcript per session.
//
// Ordering: once a non-empty replacement source is confirmed, the previous
// remote file is deleted before the new upload is attempted. A failure
// between those steps leaves the session with zero transcripts until the
// next terminal event, which is the chosen trade-off: never two transcripts,
// at the cost of occasionally none. The stale handle stays in the store and
// gets a redundant (idempotent) delete on the next successful run.
func (h *Handler) replaceTranscript(ctx context.Context, conversationID, path, threadTS string) {
	logger := h.logger.With().Str("conversation_id", conversationID).Logger()

	content, ok := readTranscript(path, logger)
	if !ok {
		return
	}

	if oldID, ok := h.sessions.Transcript(conversationID); ok {
		// Best-effort: an already-deleted file must not block the new upload
		if err := h.chat.DeleteFile(ctx, oldID); err != nil {
			logger.Warn().Err(err).Str("file_id", oldID).Msg("Failed to delete previous transcript")
		}
	}

	name := transcriptFilename(h.now())
	uploadURL, fileID, err := h.chat.GetUploadURL(ctx, name, len(content))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to request upload slot")
		return
	}

	if err := h.chat.UploadToURL(ctx, uploadURL, content); err != nil {
		logger.Error().Err(err).Msg("Failed to push transcript bytes")
		return
	}

	// Without a thread anchor there is no meaningful attachment point; the
	// finalize step is skipped and the bare upload is still recorded so it
	// gets superseded next time.
	if threadTS != "" {
		if err := h.chat.CompleteUpload(ctx, fileID, name, threadTS); err != nil {
			logger.Error().Err(err).Msg("Failed to finalize upload")
			return
		}
	}

	h.sessions.SetTranscript(conversationID, fileID)
	logger.Info().Str("file_id", fileID).Msg("Transcript replaced")
}

// readTranscript loads and sanitizes the local transcript source. An empty
// or unreadable source makes the whole replacement a no-op.
func readTranscript(path string, logger zerolog.Logger) ([]byte, bool) {
	if path == "" {
		return nil, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Transcript unreadable, skipping upload")
		return nil, false
	}
	content := sanitize(raw)
	if len(content) == 0 {
		return nil, false
	}
	return content, true
}

// sanitize coerces the transcript to clean UTF-8 text so the platform does
// not classify it as opaque binary. Invalid sequences become the replacement
// rune and control characters other than tab/newline are dropped. The upload
// slot is requested with the length of this sanitized form.
func sanitize(raw []byte) []byte {
	s := strings.ToValidUTF8(string(raw), "�")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return []byte(b.String())
}

// transcriptFilename names an upload after its moment in time. Colons and
// spaces are unsafe in filenames, so they become dashes.
func transcriptFilename(t time.Time) string {
	stamp := t.Format("2006-01-02 15:04:05")
	return "transcript-" + strings.NewReplacer(":", "-", " ", "-").Replace(stamp) + ".txt"
}
