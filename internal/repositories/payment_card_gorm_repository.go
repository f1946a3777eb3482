package repositories

import (
	"fmt"

	"marketplace/internal/models"

	"gorm.io/gorm"
)

// GORMPaymentCardRepository is a GORM implementation of PaymentCardRepository.
type GORMPaymentCardRepository struct {
	db *gorm.DB
}

// NewGORMPaymentCardRepository creates a new instance of GORMPaymentCardRepository.
func NewGORMPaymentCardRepository(db *gorm.DB) *GORMPaymentCardRepository {
	return &GORMPaymentCardRepository{
		db: db,
	}
}

// FindActiveCard looks up a card by id, owner, and active status.
func (r *GORMPaymentCardRepository) FindActiveCard(cardID, userID uint) (*models.PaymentCard, error) {
	var card models.PaymentCard
	err := r.db.First(&card, "card_id = ? AND user_id = ? AND status = ?",
		cardID, userID, models.CardStatusActive).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to find card %d: %w", cardID, err)
	}
	return &card, nil
}

// Create inserts a new payment card.
func (r *GORMPaymentCardRepository) Create(card *models.PaymentCard) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create payment card: %w", err)
	}
	return nil
}

// Save writes back card changes, e.g. the last-used timestamp.
func (r *GORMPaymentCardRepository) Save(card *models.PaymentCard) error {
	res := r.db.Model(&models.PaymentCard{}).
		Where("card_id = ?", card.CardID).
		Updates(map[string]interface{}{
			"status":       card.Status,
			"is_default":   card.IsDefault,
			"last_used_at": card.LastUsedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save payment card %d: %w", card.CardID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}
