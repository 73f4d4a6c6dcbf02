package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"pharmapool.backend/internal/domain/entities"
	"pharmapool.backend/internal/infrastructure/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, firstName string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID:        id,
		FirstName: firstName,
		LastName:  "Test",
		Email:     fmt.Sprintf("%s-%s@pharmapool.test", firstName, id.String()[:8]),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}).Error)
	return id
}

func seedConversation(t *testing.T, db *gorm.DB, kind entities.ConversationKind, participants ...uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.Conversation{
		ID:        id,
		Kind:      string(kind),
		Title:     "Paracetamol bulk order",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}).Error)
	for i, userID := range participants {
		require.NoError(t, db.Create(&models.ConversationParticipant{
			ConversationID: id,
			UserID:         userID,
			JoinedAt:       time.Now().Add(time.Duration(i) * time.Second),
		}).Error)
	}
	return id
}

func newTestWallet(conversationID, supplierID uuid.UUID, target int64) *entities.Wallet {
	return &entities.Wallet{
		WalletAddress:    "ACCT_" + uuid.NewString()[:8],
		ExternalWalletID: "sub_" + uuid.NewString()[:8],
		ConversationID:   conversationID,
		ConversationKind: entities.ConversationKindChat,
		TargetAmount:     decimal.NewFromInt(target),
		Balance:          decimal.Zero,
		RequiredPartners: 1,
		Supplier:         entities.Supplier{UserID: supplierID},
	}
}
