package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/internal/repo"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	"github.com/angelmondragon/anuncios-backend/pkg/pagination"
)

// Repository persists listings.
type Repository struct {
	repo.Base
}

// ListFilters narrows a listing search. Zero values mean "no filter".
type ListFilters struct {
	State        *enums.ListingState
	PropertyType *enums.PropertyType
	Modality     *enums.RentalModality
	Featured     *bool
	Query        string
	Order        enums.ListingOrder
	Page         pagination.Params
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bound(tx)}
}

// FindByID loads one listing. Missing rows return gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.DB(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateColumns applies a column map and reports whether the row existed.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	if len(columns) == 0 {
		var count int64
		err := r.DB(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error
		return count > 0, err
	}
	if _, ok := columns["updated_at"]; !ok {
		columns["updated_at"] = time.Now().UTC()
	}
	res := r.DB(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the listing and its ledger rows. Call it inside a transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.DB(ctx)
	if err := db.Where("listing_id = ?", id).Delete(&models.ChannelPublication{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.Listing{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PromoteDraftToReview moves a DRAFT listing to REVIEW in one conditional write.
// It reports false when the listing was not in DRAFT.
func (r *Repository) PromoteDraftToReview(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Model(&models.Listing{}).
		Where("id = ? AND state = ?", id, enums.ListingStateDraft).
		Updates(map[string]any{
			"state":      enums.ListingStateReview,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns the page of listings matching filters plus the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Listing, int64, error) {
	query := r.DB(ctx).Model(&models.Listing{})
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.PropertyType != nil {
		query = query.Where("property_type = ?", *filters.PropertyType)
	}
	if filters.Modality != nil {
		query = query.Where("modality = ?", *filters.Modality)
	}
	if filters.Featured != nil {
		query = query.Where("featured = ?", *filters.Featured)
	}
	if q := strings.ToLower(strings.TrimSpace(filters.Query)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(neighborhood, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(city, '')) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filters.Page.Normalize()
	var rows []models.Listing
	err := query.
		Order(orderClause(filters.Order)).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderClause(order enums.ListingOrder) string {
	switch order {
	case enums.ListingOrderOldest:
		return "created_at ASC, id ASC"
	case enums.ListingOrderPriceDesc:
		return "price DESC, created_at DESC"
	case enums.ListingOrderPriceAsc:
		return "price ASC, created_at DESC"
	case enums.ListingOrderViewsDesc:
		return "views DESC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
