package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// ChannelPublication is the ledger row for one (listing, channel) pair.
type ChannelPublication struct {
	ListingID    uuid.UUID               `gorm:"column:listing_id;type:uuid;primaryKey"`
	Channel      enums.Channel           `gorm:"column:channel;type:text;primaryKey"`
	Status       enums.PublicationStatus `gorm:"column:status;type:text;not null"`
	ExternalRef  *string                 `gorm:"column:external_ref"`
	ErrorCode    *string                 `gorm:"column:error_code"`
	ErrorDetail  *string                 `gorm:"column:error_detail"`
	AttemptCount int                     `gorm:"column:attempt_count;not null;default:0"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (ChannelPublication) TableName() string {
	return "channel_publications"
}
