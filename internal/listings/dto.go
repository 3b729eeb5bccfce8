package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/pagination"
)

// ListingDTO is the listing payload returned to clients.
type ListingDTO struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	PropertyType string    `json:"property_type"`
	Modality     string    `json:"modality"`
	Price        string    `json:"price"`
	Currency     string    `json:"currency"`
	Address      *string   `json:"address,omitempty"`
	Neighborhood *string   `json:"neighborhood,omitempty"`
	City         *string   `json:"city,omitempty"`
	Bedrooms     *int      `json:"bedrooms,omitempty"`
	Bathrooms    *int      `json:"bathrooms,omitempty"`
	AreaM2       *float64  `json:"area_m2,omitempty"`
	Media        []string  `json:"media"`
	Featured     bool      `json:"featured"`
	Views        int64     `json:"views"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListingListResult is one page of listings.
type ListingListResult struct {
	Items []ListingDTO    `json:"items"`
	Page  pagination.Page `json:"page"`
}

// NewListingDTO builds a DTO from the persisted model.
func NewListingDTO(listing *models.Listing) *ListingDTO {
	media := append([]string{}, listing.Media...)
	return &ListingDTO{
		ID:           listing.ID,
		Slug:         listing.Slug,
		Title:        listing.Title,
		Description:  listing.Description,
		PropertyType: string(listing.PropertyType),
		Modality:     string(listing.Modality),
		Price:        listing.Price.StringFixed(2),
		Currency:     listing.Currency,
		Address:      listing.Address,
		Neighborhood: listing.Neighborhood,
		City:         listing.City,
		Bedrooms:     listing.Bedrooms,
		Bathrooms:    listing.Bathrooms,
		AreaM2:       listing.AreaM2,
		Media:        media,
		Featured:     listing.Featured,
		Views:        listing.Views,
		State:        string(listing.State),
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}
}
