package listings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func mustCreateListing(t *testing.T, conn *gorm.DB, mutate func(*models.Listing)) *models.Listing {
	t.Helper()
	created := time.Now().UTC().Add(-time.Hour)
	listing := &models.Listing{
		ID:           uuid.New(),
		Slug:         "piso-centro-" + uuid.NewString(),
		Title:        "Piso en el centro",
		Description:  strPtr("Luminoso, dos dormitorios"),
		PropertyType: enums.PropertyTypeApartment,
		Modality:     enums.ModalityLongTermRent,
		Price:        decimal.RequireFromString("950.00"),
		Currency:     "EUR",
		Neighborhood: strPtr("Malasaña"),
		City:         strPtr("Madrid"),
		Bedrooms:     intPtr(2),
		Bathrooms:    intPtr(1),
		Media:        pq.StringArray{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"},
		State:        enums.ListingStateDraft,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	if mutate != nil {
		mutate(listing)
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}
