// Package payment models the call contract of the external payment gateway.
// Only the synchronous charge API is in scope; the gateway's own internals
// (retries, 3DS, capture) stay behind this boundary.
package payment

import (
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest carries everything the gateway needs for one charge attempt.
type ChargeRequest struct {
	Card     *models.PaymentCard
	Amount   decimal.Decimal
	Currency string
}

// ChargeResult is the gateway's answer. Success false means the charge was
// declined; transport or gateway faults surface as errors instead.
type ChargeResult struct {
	Success       bool
	TransactionID string
}

// Gateway is the synchronous charge API consumed by the order service.
type Gateway interface {
	Name() string
	Charge(req ChargeRequest) (*ChargeResult, error)
}

// SimulatedGateway approves every well-formed charge. It stands in for a
// real processor during development and demos.
type SimulatedGateway struct{}

// NewSimulatedGateway creates a new SimulatedGateway.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// Name identifies the gateway in audit rows and order metadata.
func (g *SimulatedGateway) Name() string {
	return "simulated"
}

// Charge validates the request and approves it with a generated transaction id.
func (g *SimulatedGateway) Charge(req ChargeRequest) (*ChargeResult, error) {
	if req.Card == nil {
		return nil, fmt.Errorf("charge request has no card")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", req.Amount)
	}
	return &ChargeResult{
		Success:       true,
		TransactionID: "sim-" + uuid.New().String(),
	}, nil
}
