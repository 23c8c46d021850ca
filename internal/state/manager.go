package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// RootPoster posts a message to the configured channel and returns its
// timestamp. An empty threadTS posts a new root message.
type RootPoster interface {
	PostMessage(ctx context.Context, text, threadTS string) (string, error)
}

// Manager is the source of truth for "does a thread already exist for this
// conversation" and "which transcript file must be superseded". It layers
// the thread-creation protocol over a snapshot Store.
//
// Store I/O failures degrade to an empty mapping rather than aborting the
// caller: a duplicate thread is acceptable, a dropped notification is not.
// There is no cross-process locking; the agent runtime delivers events for
// one conversation serially.
type Manager struct {
	store  Store
	poster RootPoster
	logger zerolog.Logger
}

// NewManager creates a session state manager
func NewManager(store Store, poster RootPoster, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		poster: poster,
		logger: logger.With().Str("component", "state").Logger(),
	}
}

// load reads the mapping, degrading to empty on failure
func (m *Manager) load() map[string]Session {
	sessions, err := m.store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("State unreadable, treating as empty")
		return map[string]Session{}
	}
	return sessions
}

// save persists the mapping, best-effort
func (m *Manager) save(sessions map[string]Session) {
	if err := m.store.Save(sessions); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist state")
	}
}

// Thread returns the thread anchor for a conversation, if one exists
func (m *Manager) Thread(conversationID string) (string, bool) {
	entry, ok := m.load()[conversationID]
	if !ok || entry.ThreadTS == "" {
		return "", false
	}
	return entry.ThreadTS, true
}

// EnsureThread returns the conversation's thread anchor, creating the thread
// by posting a root message titled with title if none exists yet. The anchor
// is persisted before returning, so repeated calls across separate process
// invocations never create a second thread.
func (m *Manager) EnsureThread(ctx context.Context, conversationID, title string) (string, error) {
	sessions := m.load()
	if entry, ok := sessions[conversationID]; ok && entry.ThreadTS != "" {
		return entry.ThreadTS, nil
	}

	ts, err := m.poster.PostMessage(ctx, fmt.Sprintf(":thread: *%s*", title), "")
	if err != nil {
		return "", fmt.Errorf("failed to post thread root: %w", err)
	}

	entry := sessions[conversationID]
	entry.ThreadTS = ts
	sessions[conversationID] = entry
	m.save(sessions)

	m.logger.Info().
		Str("conversation_id", conversationID).
		Str("thread_ts", ts).
		Msg("Thread created")

	return ts, nil
}

// Transcript returns the live transcript file id for a conversation, if any
func (m *Manager) Transcript(conversationID string) (string, bool) {
	entry, ok := m.load()[conversationID]
	if !ok || entry.FileID == "" {
		return "", false
	}
	return entry.FileID, true
}

// SetTranscript records fileID as the conversation's live transcript,
// superseding whatever was stored before.
func (m *Manager) SetTranscript(conversationID, fileID string) {
	sessions := m.load()
	entry := sessions[conversationID]
	entry.FileID = fileID
	sessions[conversationID] = entry
	m.save(sessions)
}

// MostRecentThread returns the conversation id and thread anchor of the most
// recently created thread. Used by the reply listener to decide which thread
// to watch.
func (m *Manager) MostRecentThread() (conversationID, threadTS string, ok bool) {
	for id, entry := range m.load() {
		if entry.ThreadTS > threadTS {
			conversationID = id
			threadTS = entry.ThreadTS
		}
	}
	return conversationID, threadTS, threadTS != ""
}
