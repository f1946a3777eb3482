package models

import "time"

// CardType distinguishes credit from debit cards.
type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

// CardStatus is the lifecycle state of a stored card.
type CardStatus string

const (
	CardStatusActive   CardStatus = "active"
	CardStatusInactive CardStatus = "inactive"
)

// PaymentCard holds the displayable details of a stored payment card. Only
// non-sensitive fields live here; the raw card number never touches this
// service.
type PaymentCard struct {
	CardID uint `json:"card_id" gorm:"primaryKey;autoIncrement"`
	UserID uint `json:"user_id" gorm:"index;not null"`

	CardType       CardType `json:"card_type" gorm:"type:varchar(16);not null"`
	LastFourDigits string   `json:"last_four_digits" gorm:"type:varchar(4);not null"`
	CardHolderName string   `json:"card_holder_name" gorm:"type:varchar(100);not null"`
	CardBrand      string   `json:"card_brand" gorm:"type:varchar(50);not null"`

	Status    CardStatus `json:"status" gorm:"type:varchar(16);not null;default:active"`
	IsDefault bool       `json:"is_default" gorm:"not null;default:false"`

	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TouchLastUsed stamps the card as used now.
func (c *PaymentCard) TouchLastUsed() {
	now := time.Now().UTC()
	c.LastUsedAt = &now
}
