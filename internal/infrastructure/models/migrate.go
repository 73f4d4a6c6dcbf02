package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the escrow schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Conversation{},
		&ConversationParticipant{},
		&Wallet{},
		&Pledge{},
		&WalletEvent{},
	)
}
