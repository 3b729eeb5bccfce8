package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// Listing is a real-estate advertisement ("anuncio").
type Listing struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string               `gorm:"column:slug;not null;uniqueIndex"`
	Title        string               `gorm:"column:title;not null"`
	Description  *string              `gorm:"column:description"`
	PropertyType enums.PropertyType   `gorm:"column:property_type;type:text;not null"`
	Modality     enums.RentalModality `gorm:"column:modality;type:text;not null"`
	Price        decimal.Decimal      `gorm:"column:price;type:numeric(14,2);not null"`
	Currency     string               `gorm:"column:currency;not null;default:USD"`
	Address      *string              `gorm:"column:address"`
	Neighborhood *string              `gorm:"column:neighborhood"`
	City         *string              `gorm:"column:city"`
	Bedrooms     *int                 `gorm:"column:bedrooms"`
	Bathrooms    *int                 `gorm:"column:bathrooms"`
	AreaM2       *float64             `gorm:"column:area_m2;type:numeric(10,2)"`
	Media        pq.StringArray       `gorm:"column:media;type:text[];not null;default:'{}'"`
	Featured     bool                 `gorm:"column:featured;not null;default:false"`
	Views        int64                `gorm:"column:views;not null;default:0"`
	State        enums.ListingState   `gorm:"column:state;type:text;not null;default:DRAFT"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}
