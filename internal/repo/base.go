package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by domain repositories that need a context-bound handle.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bound returns a copy of b that runs on tx.
func (b Base) Bound(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}
