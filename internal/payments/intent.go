package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

const (
	IntentPending   = "pending"
	IntentCompleted = "completed"
	IntentExpired   = "expired"
)

// Intent is the service-side record of a created payment intent. The client
// secret is handed to the buyer and never persisted.
type Intent struct {
	ID          string    `bson:"_id" json:"id"`
	SellerID    string    `bson:"seller_id" json:"seller_id"`
	AmountCents int64     `bson:"amount_cents" json:"amount_cents"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// IntentStore persists intent records so completion can be checked against
// what was actually created and unconfirmed intents can be swept.
type IntentStore interface {
	SaveIntent(ctx context.Context, intent Intent) error
	IntentByID(ctx context.Context, intentID string) (*Intent, error)
	MarkCompleted(ctx context.Context, intentID string) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SellerDirectory resolves a seller to their processor sub-account.
// The catalog package provides the production implementation.
type SellerDirectory func(ctx context.Context, sellerID string) (string, error)

// Broker turns a cart total and seller identity into a processor-side
// payment intent.
type Broker struct {
	directory SellerDirectory
	gateway   *Gateway
	intents   IntentStore
	flows     *Flows
}

func NewBroker(directory SellerDirectory, gateway *Gateway, intents IntentStore, flows *Flows) *Broker {
	return &Broker{directory: directory, gateway: gateway, intents: intents, flows: flows}
}

type IntentResult struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent resolves the seller's sub-account, asks the gateway for an
// intent, records it, and opens the confirmation flow. The returned secret
// is what the buyer presents to the processor's client SDK.
func (b *Broker) CreateIntent(ctx context.Context, amountCents int64, sellerID, shippingAddress string) (*IntentResult, error) {
	if amountCents <= 0 {
		return nil, apperr.E(apperr.Validation, "payments.CreateIntent", fmt.Errorf("amount must be positive"))
	}
	if sellerID == "" || shippingAddress == "" {
		return nil, apperr.E(apperr.Validation, "payments.CreateIntent", fmt.Errorf("seller and shipping address required"))
	}

	accountID, err := b.directory(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	secret, err := b.gateway.CreateIntent(ctx, IntentParams{
		AmountCents:     amountCents,
		Currency:        "usd",
		OnBehalfOf:      accountID,
		ShippingAddress: shippingAddress,
	})
	if err != nil {
		return nil, err
	}

	intent := Intent{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		AmountCents: amountCents,
		Status:      IntentPending,
		CreatedAt:   time.Now(),
	}
	if err := b.intents.SaveIntent(ctx, intent); err != nil {
		return nil, apperr.E(apperr.Network, "payments.CreateIntent", err)
	}

	// Secret in hand means the confirmation sheet is ready to present.
	b.flows.Begin(intent.ID).Present()

	return &IntentResult{IntentID: intent.ID, ClientSecret: secret}, nil
}

// Intent returns the stored record for an intent. Completion handlers bind
// the registered order to this record, not to client-supplied fields.
func (b *Broker) Intent(ctx context.Context, intentID string) (*Intent, error) {
	return b.intents.IntentByID(ctx, intentID)
}

// Settle records the terminal outcome of an intent's confirmation flow.
func (b *Broker) Settle(ctx context.Context, intentID string) error {
	if err := b.intents.MarkCompleted(ctx, intentID); err != nil {
		return apperr.E(apperr.Network, "payments.Settle", err)
	}
	return nil
}
