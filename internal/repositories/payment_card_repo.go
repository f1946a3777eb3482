package repositories

import (
	"errors"

	"marketplace/internal/models"
)

// ErrCardNotFound is returned when no matching active card exists.
var ErrCardNotFound = errors.New("payment card not found")

// PaymentCardRepository defines the interface for stored-card data access.
type PaymentCardRepository interface {
	// FindActiveCard returns the card only if it belongs to the user and is
	// active.
	FindActiveCard(cardID, userID uint) (*models.PaymentCard, error)
	Create(card *models.PaymentCard) error
	Save(card *models.PaymentCard) error
}
