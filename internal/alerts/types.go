package alerts

import "time"

// Task type constants
const (
	TaskOrderReceipt = "email:order_receipt"
	TaskPayoutNotice = "email:payout_notice"
	TaskIntentSweep  = "payments:intent_sweep"
	TaskSettleRetry  = "payments:settle_retry"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Order receipt sent to the buyer after registration succeeds
type OrderReceiptPayload struct {
	OrderID  string        `json:"order_id"`
	BuyerID  string        `json:"buyer_id"`
	Email    string        `json:"email"`
	Amount   string        `json:"amount"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Retry of an intent status flip that failed during checkout
type SettleRetryPayload struct {
	IntentID string `json:"intent_id"`
}

// Payout notice sent to the seller after earnings settle
type PayoutNoticePayload struct {
	OrderID  string        `json:"order_id"`
	SellerID string        `json:"seller_id"`
	Email    string        `json:"email"`
	Amount   string        `json:"amount"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
