package listener

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// watermarks tracks the last-seen message timestamp per thread, so replies
// are injected exactly once across listener restarts.
type watermarks map[string]string

// loadWatermarks reads the listener state file; absent or corrupt state
// starts fresh.
func loadWatermarks(path string) watermarks {
	data, err := os.ReadFile(path)
	if err != nil {
		return watermarks{}
	}
	var w watermarks
	if err := json.Unmarshal(data, &w); err != nil {
		return watermarks{}
	}
	return w
}

// saveWatermarks persists the listener state, best-effort
func saveWatermarks(path string, w watermarks) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
