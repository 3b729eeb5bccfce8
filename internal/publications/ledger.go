package publications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/anuncios-backend/internal/repo"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// LedgerWrite is one status transition for a (listing, channel) record.
type LedgerWrite struct {
	ListingID    uuid.UUID
	Channel      enums.Channel
	Status       enums.PublicationStatus
	ExternalRef  *string
	ErrorCode    *string
	ErrorDetail  *string
	CountAttempt bool
}

// LedgerRepository stores channel publication records keyed by (listing_id, channel).
type LedgerRepository struct {
	repo.Base
	now func() time.Time
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		Base: repo.NewBase(db),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Find returns the record for the pair, or nil when none exists.
func (r *LedgerRepository) Find(ctx context.Context, listingID uuid.UUID, channel enums.Channel) (*models.ChannelPublication, error) {
	var row models.ChannelPublication
	res := r.DB(ctx).
		Where("listing_id = ? AND channel = ?", listingID, channel).
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// Upsert creates the record or mutates it in place. Concurrent writers on one key: last write wins.
func (r *LedgerRepository) Upsert(ctx context.Context, write LedgerWrite) error {
	now := r.now()
	row := models.ChannelPublication{
		ListingID:   write.ListingID,
		Channel:     write.Channel,
		Status:      write.Status,
		ExternalRef: write.ExternalRef,
		ErrorCode:   write.ErrorCode,
		ErrorDetail: write.ErrorDetail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if write.CountAttempt {
		row.AttemptCount = 1
	}

	updates := map[string]any{
		"status":       write.Status,
		"error_code":   write.ErrorCode,
		"error_detail": write.ErrorDetail,
		"updated_at":   now,
	}
	if write.Status == enums.PublicationStatusPublished {
		updates["external_ref"] = write.ExternalRef
	}
	if write.CountAttempt {
		updates["attempt_count"] = gorm.Expr("channel_publications.attempt_count + 1")
	}

	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "listing_id"}, {Name: "channel"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
}

// ListByListing returns every record stored for the listing ordered by channel.
func (r *LedgerRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ChannelPublication, error) {
	var rows []models.ChannelPublication
	err := r.DB(ctx).
		Where("listing_id = ?", listingID).
		Order("channel ASC").
		Find(&rows).Error
	return rows, err
}
