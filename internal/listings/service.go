package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/pkg/db"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
	"github.com/angelmondragon/anuncios-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes listing reads and editing operations.
type Service interface {
	ListListings(ctx context.Context, input ListListingsInput) (*ListingListResult, error)
	GetListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	CreateListing(ctx context.Context, input CreateListingInput) (*ListingDTO, error)
	UpdateListing(ctx context.Context, id uuid.UUID, payload map[string]any) (*ListingDTO, error)
	DeleteListing(ctx context.Context, id uuid.UUID) error
	DuplicateListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
}

// ListListingsInput carries the raw filter values accepted by the list endpoint.
type ListListingsInput struct {
	State        string
	PropertyType string
	Modality     string
	Featured     *bool
	Query        string
	Order        string
	Limit        int
	Offset       int
}

// CreateListingInput is the content accepted when a listing is created.
type CreateListingInput struct {
	Title        string
	Description  *string
	PropertyType enums.PropertyType
	Modality     enums.RentalModality
	Price        decimal.Decimal
	Currency     string
	Address      *string
	Neighborhood *string
	City         *string
	Bedrooms     *int
	Bathrooms    *int
	AreaM2       *float64
	Media        []string
	Featured     bool
}

type service struct {
	repo      *Repository
	tx        txRunner
	validator *UpdateValidator
	now       func() time.Time
}

// NewService wires the listing service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	validator, err := NewUpdateValidator()
	if err != nil {
		return nil, err
	}
	return &service{
		repo:      repo,
		tx:        tx,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) ListListings(ctx context.Context, input ListListingsInput) (*ListingListResult, error) {
	filters, err := buildListFilters(input)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list listings")
	}

	page := filters.Page.Normalize()
	items := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewListingDTO(&rows[i]))
	}
	return &ListingListResult{
		Items: items,
		Page:  pagination.Page{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func buildListFilters(input ListListingsInput) (ListFilters, error) {
	order, err := enums.ParseListingOrder(input.Order)
	if err != nil {
		return ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order")
	}
	filters := ListFilters{
		Featured: input.Featured,
		Query:    input.Query,
		Order:    order,
		Page:     pagination.Params{Limit: input.Limit, Offset: input.Offset},
	}
	if value := strings.TrimSpace(input.State); value != "" {
		state, err := enums.ParseListingState(strings.ToUpper(value))
		if err != nil {
			return ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter")
		}
		filters.State = &state
	}
	if value := strings.TrimSpace(input.PropertyType); value != "" {
		propertyType, err := enums.ParsePropertyType(strings.ToUpper(value))
		if err != nil {
			return ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property_type filter")
		}
		filters.PropertyType = &propertyType
	}
	if value := strings.TrimSpace(input.Modality); value != "" {
		modality, err := enums.ParseRentalModality(strings.ToUpper(value))
		if err != nil {
			return ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid modality filter")
		}
		filters.Modality = &modality
	}
	return filters, nil
}

func (s *service) GetListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	listing, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return NewListingDTO(listing), nil
}

func (s *service) CreateListing(ctx context.Context, input CreateListingInput) (*ListingDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.PropertyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property_type")
	}
	if !input.Modality.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid modality")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be >= 0")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.now()
	listing := &models.Listing{
		ID:           uuid.New(),
		Slug:         BuildSlug(title, now),
		Title:        title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		Modality:     input.Modality,
		Price:        input.Price,
		Currency:     currency,
		Address:      input.Address,
		Neighborhood: input.Neighborhood,
		City:         input.City,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		AreaM2:       input.AreaM2,
		Media:        pq.StringArray(append([]string{}, input.Media...)),
		Featured:     input.Featured,
		State:        enums.ListingStateDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, mapWriteError(err, "db: create listing")
	}
	return NewListingDTO(created), nil
}

func (s *service) UpdateListing(ctx context.Context, id uuid.UUID, payload map[string]any) (*ListingDTO, error) {
	clean := s.validator.Sanitize(payload)
	details, err := s.validator.Validate(clean)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate listing update")
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing update").WithDetails(details)
	}

	columns, err := updateColumns(clean)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		columns["updated_at"] = s.now()
	}

	var updated *models.Listing
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if next, ok := columns["state"].(string); ok {
			if err := s.guardTransition(ctx, repo, id, enums.ListingState(next)); err != nil {
				return err
			}
		}
		found, err := repo.UpdateColumns(ctx, id, columns)
		if err != nil {
			return mapWriteError(err, "db: update listing")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		updated, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewListingDTO(updated), nil
}

func (s *service) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete listing")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil
	})
}

func (s *service) DuplicateListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	source, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	clone := &models.Listing{
		ID:           uuid.New(),
		Slug:         BuildCopySlug(source.Title, now),
		Title:        source.Title,
		Description:  cloneString(source.Description),
		PropertyType: source.PropertyType,
		Modality:     source.Modality,
		Price:        source.Price,
		Currency:     source.Currency,
		Address:      cloneString(source.Address),
		Neighborhood: cloneString(source.Neighborhood),
		City:         cloneString(source.City),
		Bedrooms:     cloneInt(source.Bedrooms),
		Bathrooms:    cloneInt(source.Bathrooms),
		AreaM2:       cloneFloat(source.AreaM2),
		Media:        pq.StringArray(append([]string{}, source.Media...)),
		Featured:     false,
		Views:        0,
		State:        enums.ListingStateDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, clone)
	if err != nil {
		return nil, mapWriteError(err, "db: duplicate listing")
	}
	return NewListingDTO(created), nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Listing, error) {
	listing, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load listing")
	}
	return listing, nil
}

func (s *service) guardTransition(ctx context.Context, repo *Repository, id uuid.UUID, next enums.ListingState) error {
	current, err := s.load(ctx, repo, id)
	if err != nil {
		return err
	}
	if current.State == next || current.State.CanTransitionTo(next) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid listing state transition").WithDetails(map[string]any{
		"from": current.State.String(),
		"to":   next.String(),
	})
}

func mapWriteError(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "listing slug already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
