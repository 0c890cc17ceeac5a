package persistence

import (
	"context"
	"testing"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory sqlite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	}, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func seedUser(t *testing.T, db *gorm.DB, username string, profileType identity.ProfileType) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "secret", profileType)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

func detailInputs(basePrice int64, baseDays int) []offer.DetailInput {
	return []offer.DetailInput{
		{Title: "Basic", Revisions: 1, DeliveryTimeInDays: baseDays + 2, Price: decimal.NewFromInt(basePrice), Features: []string{"Logo"}, OfferType: offer.OfferTypeBasic},
		{Title: "Standard", Revisions: 3, DeliveryTimeInDays: baseDays + 1, Price: decimal.NewFromInt(basePrice * 2), Features: []string{"Logo", "Card"}, OfferType: offer.OfferTypeStandard},
		{Title: "Premium", Revisions: 5, DeliveryTimeInDays: baseDays, Price: decimal.NewFromInt(basePrice * 3), Features: []string{"Logo", "Card", "Flyer"}, OfferType: offer.OfferTypePremium},
	}
}

func seedOffer(t *testing.T, db *gorm.DB, owner uint, title, description string, basePrice int64, baseDays int) *offer.Offer {
	t.Helper()
	o, err := offer.NewOffer(owner, title, description, nil, detailInputs(basePrice, baseDays))
	require.NoError(t, err)
	require.NoError(t, NewGormOfferRepository(db).Create(context.Background(), o))
	return o
}
