package hook

import (
	"encoding/json"
	"io"
)

// Event is the payload the agent runtime delivers on stdin, one JSON object
// per invocation. Response events carry text, stop events carry status.
type Event struct {
	Text           string `json:"text"`
	Status         string `json:"status"`
	ConversationID string `json:"conversation_id"`
	TranscriptPath string `json:"transcript_path"`
}

// Decode reads one event from r. Malformed or empty input yields a zero
// event, never an error: the handler treats it as a no-op and still
// acknowledges.
func Decode(r io.Reader) Event {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return Event{}
	}
	return ev
}

// Ack writes the empty JSON acknowledgment the agent runtime expects on
// stdout. It is emitted on every code path, success or not.
func Ack(w io.Writer) {
	io.WriteString(w, "{}\n")
}
