package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Session tracks what slackline has created in Slack for one agent
// conversation: the thread root timestamp and the id of the transcript file
// currently attached to it.
type Session struct {
	ThreadTS string `json:"thread_ts"`
	FileID   string `json:"file_id,omitempty"`
}

// Store persists the conversation-id → Session mapping as a whole snapshot.
// Implementations load and save the entire mapping; there is no per-entry
// access, which keeps a future swap to a real key-value store behind the
// same interface.
type Store interface {
	Load() (map[string]Session, error)
	Save(map[string]Session) error
}

// FileStore is a Store backed by a single JSON file. Each hook invocation is
// a separate process, so every call re-reads the file; nothing is cached.
type FileStore struct {
	path        string
	maxSessions int
}

// NewFileStore creates a file-backed store at path. maxSessions caps how many
// conversations are retained; older entries (by thread timestamp) are pruned
// on save. A cap of zero disables pruning.
func NewFileStore(path string, maxSessions int) *FileStore {
	return &FileStore{
		path:        path,
		maxSessions: maxSessions,
	}
}

// Load reads the full mapping. A missing file yields an empty mapping; a
// corrupt one yields an error the caller is expected to degrade on.
func (s *FileStore) Load() (map[string]Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Session{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	// Entries were historically bare thread-ts strings; accept both shapes.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	sessions := make(map[string]Session, len(raw))
	for id, entry := range raw {
		var sess Session
		if err := json.Unmarshal(entry, &sess); err == nil {
			sessions[id] = sess
			continue
		}
		var ts string
		if err := json.Unmarshal(entry, &ts); err == nil {
			sessions[id] = Session{ThreadTS: ts}
			continue
		}
		return nil, fmt.Errorf("failed to parse state entry for %q", id)
	}

	return sessions, nil
}

// Save writes the full mapping back, pruning to the newest maxSessions
// entries first.
func (s *FileStore) Save(sessions map[string]Session) error {
	if s.maxSessions > 0 && len(sessions) > s.maxSessions {
		ids := make([]string, 0, len(sessions))
		for id := range sessions {
			ids = append(ids, id)
		}
		// Slack timestamps sort lexicographically in creation order
		sort.Slice(ids, func(i, j int) bool {
			return sessions[ids[i]].ThreadTS < sessions[ids[j]].ThreadTS
		})
		for _, id := range ids[:len(ids)-s.maxSessions] {
			delete(sessions, id)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
