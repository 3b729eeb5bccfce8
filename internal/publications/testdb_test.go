package publications

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

func setupPublicationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	listings := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  property_type TEXT NOT NULL,
  modality TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'USD',
  address TEXT,
  neighborhood TEXT,
  city TEXT,
  bedrooms INTEGER,
  bathrooms INTEGER,
  area_m2 REAL,
  media TEXT NOT NULL DEFAULT '{}',
  featured BOOLEAN NOT NULL DEFAULT 0,
  views INTEGER NOT NULL DEFAULT 0,
  state TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME
);`
	publications := `
CREATE TABLE IF NOT EXISTS channel_publications (
  listing_id TEXT NOT NULL,
  channel TEXT NOT NULL,
  status TEXT NOT NULL,
  external_ref TEXT,
  error_code TEXT,
  error_detail TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (listing_id, channel)
);`
	require.NoError(t, conn.Exec(listings).Error)
	require.NoError(t, conn.Exec(publications).Error)
	return conn
}

func mustCreateListing(t *testing.T, conn *gorm.DB, state enums.ListingState) *models.Listing {
	t.Helper()
	now := time.Now().UTC()
	listing := &models.Listing{
		ID:           uuid.New(),
		Slug:         "anuncio-" + uuid.NewString(),
		Title:        "Piso en el centro",
		PropertyType: enums.PropertyTypeApartment,
		Modality:     enums.ModalityLongTermRent,
		Price:        decimal.RequireFromString("950"),
		Currency:     "EUR",
		Media:        []string{"https://cdn.test/a.jpg"},
		State:        state,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}

func loadRecord(t *testing.T, conn *gorm.DB, listingID uuid.UUID, ch enums.Channel) *models.ChannelPublication {
	t.Helper()
	var row models.ChannelPublication
	err := conn.Where("listing_id = ? AND channel = ?", listingID, ch).Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	require.NoError(t, err)
	return &row
}

func countRecords(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.ChannelPublication{}).Count(&count).Error)
	return count
}
