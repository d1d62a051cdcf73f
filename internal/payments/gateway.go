package payments

import (
	"context"
	"time"
)

// Statuts renvoyés par la passerelle lors de la vérification.
const (
	GatewaySuccess = "success"
	GatewayFailed  = "failed"
	GatewayPending = "pending"
)

// InitializeRequest décrit une session de paiement hébergée à créer.
type InitializeRequest struct {
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
}

// VerifyResult est l'état d'une transaction tel que rapporté par la
// passerelle.
type VerifyResult struct {
	Status string
	Amount float64
	PaidAt time.Time
}

// Gateway est la passerelle de paiement externe : création d'une session
// de checkout hébergée puis vérification par référence. Deux appels HTTP,
// rien de plus.
type Gateway interface {
	// Initialize crée la session et retourne l'URL de checkout hébergée.
	Initialize(ctx context.Context, req InitializeRequest) (string, error)
	// Verify interroge la transaction par référence.
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}
