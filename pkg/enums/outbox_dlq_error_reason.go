package enums

import "fmt"

// OutboxDLQErrorReason records why an outbox row was parked in outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// the broker rejected the message permanently
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	// the row could not be decoded or routed to a topic
	OutboxDLQReasonUnresolvable OutboxDLQErrorReason = "unresolvable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
	OutboxDLQReasonUnresolvable,
}

func (r OutboxDLQErrorReason) String() string {
	return string(r)
}

func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseOutboxDLQErrorReason(value string) (OutboxDLQErrorReason, error) {
	for _, candidate := range validOutboxDLQErrorReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox dlq error reason %q", value)
}
