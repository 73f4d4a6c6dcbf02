package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID                          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	WalletAddress               string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	ExternalWalletID            string              `gorm:"type:varchar(100);not null"`
	ConversationID              uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	ConversationKind            string              `gorm:"type:varchar(20);not null"`
	TargetAmount                decimal.Decimal     `gorm:"type:numeric(20,2);not null"`
	UnitPrice                   decimal.NullDecimal `gorm:"type:numeric(20,2)"`
	Quantity                    *int
	Balance                     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	RequiredPartners            int             `gorm:"not null;default:1"`
	PaymentComplete             bool            `gorm:"not null;default:false"`
	CompletedAt                 *time.Time
	SupplierUserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierReceiptAcknowledged bool      `gorm:"not null;default:false"`
	Version                     int64     `gorm:"not null;default:0"`
	CreatedAt                   time.Time
	UpdatedAt                   time.Time

	Pledges []Pledge `gorm:"foreignKey:WalletID"`
}

type Pledge struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WalletID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_pledges_wallet_reference,priority:1"`
	Reference           string          `gorm:"type:varchar(100);not null;uniqueIndex:ux_pledges_wallet_reference,priority:2"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccessCode          string          `gorm:"type:varchar(100)"`
	Amount              decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Quantity            *int
	PaymentStatus       string `gorm:"type:varchar(20);not null;index"`
	ReceiptAcknowledged bool   `gorm:"not null;default:false"`
	VerifiedAt          *time.Time
	LastCheckedAt       *time.Time `gorm:"index"`
	CreatedAt           time.Time  `gorm:"index"`
}
