package publications

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
)

// PublishInput is one publish request. ListingID is kept raw so unknown ids surface as not found.
type PublishInput struct {
	ListingID  string
	Channels   []string
	ScheduleAt *time.Time
	RequestID  string
}

// PublishOutcome aggregates every requested target.
type PublishOutcome struct {
	ListingID      uuid.UUID          `json:"listing_id"`
	Success        bool               `json:"success"`
	Scheduled      bool               `json:"scheduled"`
	ScheduledAt    *time.Time         `json:"schedule_at,omitempty"`
	ListingState   enums.ListingState `json:"listing_state"`
	Results        []TargetResult     `json:"results"`
	PromotionError string             `json:"promotion_error,omitempty"`
}

// TargetResult is the fate of one channel, or of the schedule hand-off.
type TargetResult struct {
	Target      string                   `json:"target"`
	Outcome     enums.PublicationOutcome `json:"outcome"`
	Status      enums.PublicationStatus  `json:"status,omitempty"`
	ExternalRef string                   `json:"external_ref,omitempty"`
	URL         string                   `json:"url,omitempty"`
	EventID     string                   `json:"event_id,omitempty"`
	Error       *TargetError             `json:"error,omitempty"`
}

type TargetError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// PublicationDTO is the ledger view of one channel.
type PublicationDTO struct {
	Channel      enums.Channel           `json:"channel"`
	Status       enums.PublicationStatus `json:"status"`
	ExternalRef  *string                 `json:"external_ref,omitempty"`
	ErrorCode    *string                 `json:"error_code,omitempty"`
	ErrorDetail  *string                 `json:"error_detail,omitempty"`
	AttemptCount int                     `json:"attempt_count"`
	UpdatedAt    *time.Time              `json:"updated_at,omitempty"`
}

func NewPublicationDTO(row models.ChannelPublication) PublicationDTO {
	updated := row.UpdatedAt
	return PublicationDTO{
		Channel:      row.Channel,
		Status:       row.Status,
		ExternalRef:  row.ExternalRef,
		ErrorCode:    row.ErrorCode,
		ErrorDetail:  row.ErrorDetail,
		AttemptCount: row.AttemptCount,
		UpdatedAt:    &updated,
	}
}

// ParseChannels validates the requested set. Duplicates collapse onto the first occurrence.
func ParseChannels(raw []string) ([]enums.Channel, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one channel is required").
			WithDetails(map[string]string{"channels": "must not be empty"})
	}
	seen := make(map[enums.Channel]struct{}, len(raw))
	out := make([]enums.Channel, 0, len(raw))
	var invalid []string
	for _, value := range raw {
		ch, err := enums.ParseChannel(strings.ToUpper(strings.TrimSpace(value)))
		if err != nil {
			invalid = append(invalid, value)
			continue
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported channel").
			WithDetails(map[string]any{"channels": invalid})
	}
	return out, nil
}
