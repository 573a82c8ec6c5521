package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance; created lazily so enqueues
// work without the worker side running.
func ensureClient() *asynq.Client {
	if client == nil {
		client = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr()})
	}
	return client
}

// EnqueueOrderReceipt schedules the buyer's receipt after an order settles.
func EnqueueOrderReceipt(orderID, buyerID, email, amount string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your foodSource order is confirmed",
		Body:    fmt.Sprintf("Order %s is confirmed. Total $%s. You can follow shipping from your orders tab.", orderID, amount),
	}
	payload := OrderReceiptPayload{OrderID: orderID, BuyerID: buyerID, Email: email, Amount: amount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskOrderReceipt, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueuePayoutNotice tells the seller an order's amount was added to their
// earnings.
func EnqueuePayoutNotice(orderID, sellerID, email, amount string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "New order received",
		Body:    fmt.Sprintf("Order %s added $%s to your earnings.", orderID, amount),
	}
	payload := PayoutNoticePayload{OrderID: orderID, SellerID: sellerID, Email: email, Amount: amount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskPayoutNotice, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueSettleRetry re-attempts the intent status flip that failed during
// checkout; left pending, a captured payment would later be marked expired
// by the sweep.
func EnqueueSettleRetry(intentID string) error {
	b, _ := json.Marshal(SettleRetryPayload{IntentID: intentID})
	task := asynq.NewTask(TaskSettleRetry, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("sweeps"))
	return err
}
