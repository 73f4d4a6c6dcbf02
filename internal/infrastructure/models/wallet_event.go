package models

import (
	"time"

	"github.com/google/uuid"
)

type WalletEvent struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WalletID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	WalletAddress    string     `gorm:"type:varchar(100);not null"`
	ConversationID   uuid.UUID  `gorm:"type:uuid;not null"`
	ConversationKind string     `gorm:"type:varchar(20);not null"`
	EventType        string     `gorm:"type:varchar(50);not null;index"`
	Reference        string     `gorm:"type:varchar(100);index"`
	UserID           *uuid.UUID `gorm:"type:uuid"`
	Metadata         string     `gorm:"type:text;not null;default:'{}'"`
	CreatedAt        time.Time  `gorm:"index"`
}
