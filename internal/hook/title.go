package hook

import (
	"os"
	"strings"
)

// titleMaxLen caps thread titles; Slack renders long root messages poorly
const titleMaxLen = 150

// titleFromTranscript extracts a thread title from the transcript: the first
// line of the first user query block.
func titleFromTranscript(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	_, after, found := strings.Cut(string(content), "<user_query>")
	if !found {
		return "", false
	}
	query, _, found := strings.Cut(after, "</user_query>")
	if !found {
		return "", false
	}

	line, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return capTitle(line), true
}

// capTitle shortens a title to titleMaxLen with an ellipsis
func capTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleMaxLen {
		return title
	}
	return string(runes[:titleMaxLen-3]) + "..."
}
