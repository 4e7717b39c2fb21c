package gemini

import (
	"strings"
	"time"

	"google.golang.org/genai"
)

// EventKind identifies the type of a StreamEvent.
type EventKind string

// Caller-visible event kinds.
const (
	// EventChunk carries one incremental fragment of generated text.
	EventChunk EventKind = "chunk"

	// EventHeartbeat is a periodic liveness signal emitted while an
	// attempt is in progress. It carries no payload.
	EventHeartbeat EventKind = "heartbeat"

	// EventComplete indicates the attempt finished successfully. No
	// further events follow it within the attempt.
	EventComplete EventKind = "complete"

	// EventError indicates the attempt failed. The Streamer consumes
	// error events internally to drive retries; callers never see them.
	EventError EventKind = "error"
)

// eventEndOfAttempt closes one attempt's event sequence. It always follows
// the terminal complete/error event and never surfaces to callers.
const eventEndOfAttempt EventKind = "end_of_attempt"

// StreamEvent is a single event emitted during streaming. Raw holds the
// untranslated backend chunk for chunk events; it is nil for all other
// kinds.
type StreamEvent struct {
	Kind      EventKind
	Text      string
	Raw       *genai.GenerateContentResponse
	Timestamp time.Time
}

func newEvent(kind EventKind) StreamEvent {
	return StreamEvent{Kind: kind, Timestamp: time.Now().UTC()}
}

func chunkEvent(resp *genai.GenerateContentResponse) StreamEvent {
	ev := newEvent(EventChunk)
	ev.Text = extractText(resp)
	ev.Raw = resp
	return ev
}

func errorEvent(message string) StreamEvent {
	ev := newEvent(EventError)
	ev.Text = message
	return ev
}

// extractText concatenates the text parts of every candidate in a backend
// chunk. Non-text parts are ignored.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// TextAccumulator stitches chunk events into a final string. Heartbeats and
// control events have no effect, so callers may feed it every event they
// receive.
type TextAccumulator struct {
	parts []string
}

// Push appends the event's text when it is a non-empty chunk.
func (a *TextAccumulator) Push(event StreamEvent) {
	if event.Kind == EventChunk && event.Text != "" {
		a.parts = append(a.parts, event.Text)
	}
}

// Text returns the accumulated text in delivery order.
func (a *TextAccumulator) Text() string {
	return strings.Join(a.parts, "")
}
