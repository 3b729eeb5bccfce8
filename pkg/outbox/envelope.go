package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// EnvelopeVersion is stamped on events that do not set their own version.
const EnvelopeVersion = 1

// ErrEmptyPayload is returned by Decode when the envelope carries no data.
var ErrEmptyPayload = errors.New("outbox payload is empty")

// ActorRef identifies who produced the event. RequestID ties a scheduled
// publication back to the HTTP request that asked for it.
type ActorRef struct {
	Source    string `json:"source"`
	RequestID string `json:"requestId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Decode unmarshals Data into dst.
func (e PayloadEnvelope) Decode(dst any) error {
	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyPayload
	}
	return json.Unmarshal(trimmed, dst)
}
