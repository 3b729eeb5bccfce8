package enums

import "fmt"

// Channel identifies an external publication destination.
type Channel string

const (
	ChannelWeb            Channel = "WEB"
	ChannelFacebook       Channel = "FACEBOOK"
	ChannelInstagram      Channel = "INSTAGRAM"
	ChannelGoogleBusiness Channel = "GOOGLE_BUSINESS"
)

var validChannels = []Channel{
	ChannelWeb,
	ChannelFacebook,
	ChannelInstagram,
	ChannelGoogleBusiness,
}

func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical channel enum.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// Channels returns every supported channel.
func Channels() []Channel {
	return append([]Channel(nil), validChannels...)
}

// ParseChannel converts the raw string to Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}

// PublicationStatus is the per-channel ledger status.
type PublicationStatus string

const (
	PublicationStatusNotPublished PublicationStatus = "NOT_PUBLISHED"
	PublicationStatusPending      PublicationStatus = "PENDING"
	PublicationStatusPublished    PublicationStatus = "PUBLISHED"
	PublicationStatusError        PublicationStatus = "ERROR"
)

var validPublicationStatuses = []PublicationStatus{
	PublicationStatusNotPublished,
	PublicationStatusPending,
	PublicationStatusPublished,
	PublicationStatusError,
}

func (s PublicationStatus) String() string {
	return string(s)
}

func (s PublicationStatus) IsValid() bool {
	for _, candidate := range validPublicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// PublicationStatuses returns the ledger statuses, NOT_PUBLISHED first.
func PublicationStatuses() []PublicationStatus {
	return append([]PublicationStatus(nil), validPublicationStatuses...)
}

func ParsePublicationStatus(value string) (PublicationStatus, error) {
	for _, candidate := range validPublicationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid publication status %q", value)
}

// PublicationOutcome is the per-target result reported to callers.
type PublicationOutcome string

const (
	OutcomeAlreadyPublished PublicationOutcome = "ALREADY_PUBLISHED"
	OutcomePublished        PublicationOutcome = "PUBLISHED"
	OutcomeError            PublicationOutcome = "ERROR"
	OutcomePendingAccepted  PublicationOutcome = "PENDING_ACCEPTED"
)
