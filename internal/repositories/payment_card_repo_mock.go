package repositories

import (
	"sync"

	"marketplace/internal/models"
)

// MockPaymentCardRepository is an in-memory implementation of
// PaymentCardRepository.
type MockPaymentCardRepository struct {
	cards  map[uint]models.PaymentCard
	nextID uint
	mu     sync.RWMutex
}

// NewMockPaymentCardRepository creates a new instance of MockPaymentCardRepository.
func NewMockPaymentCardRepository() *MockPaymentCardRepository {
	return &MockPaymentCardRepository{
		cards:  make(map[uint]models.PaymentCard),
		nextID: 1,
	}
}

// FindActiveCard returns the card only if it belongs to the user and is active.
func (r *MockPaymentCardRepository) FindActiveCard(cardID, userID uint) (*models.PaymentCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[cardID]
	if !ok || card.UserID != userID || card.Status != models.CardStatusActive {
		return nil, ErrCardNotFound
	}
	clone := card
	return &clone, nil
}

// Create adds a new payment card.
func (r *MockPaymentCardRepository) Create(card *models.PaymentCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.CardID == 0 {
		card.CardID = r.nextID
		r.nextID++
	}
	r.cards[card.CardID] = *card
	return nil
}

// Save writes back card changes.
func (r *MockPaymentCardRepository) Save(card *models.PaymentCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[card.CardID]; !ok {
		return ErrCardNotFound
	}
	r.cards[card.CardID] = *card
	return nil
}

func (r *MockPaymentCardRepository) snapshot() map[uint]models.PaymentCard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uint]models.PaymentCard, len(r.cards))
	for id, card := range r.cards {
		snap[id] = card
	}
	return snap
}

func (r *MockPaymentCardRepository) restore(snap map[uint]models.PaymentCard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = snap
}
