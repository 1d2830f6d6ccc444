package storage

import "time"

// Event is one visitor message together with the assistant's reply.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	Channel           string    `json:"channel"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Rule              string    `json:"rule,omitempty"`
	Source            string    `json:"source"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
