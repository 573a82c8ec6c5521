package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"

	"github.com/foodsource-dev/foodsource/internal/payments"
)

var (
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
)

func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		return host + ":" + port
	}
	return "127.0.0.1:6379"
}

// Init starts the Asynq server, a shared client, and the periodic sweep of
// abandoned payment intents.
func Init() {
	opts := asynq.RedisClientOpt{Addr: redisAddr()}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskOrderReceipt, handleOrderReceipt)
	mux.HandleFunc(TaskPayoutNotice, handlePayoutNotice)
	mux.HandleFunc(TaskIntentSweep, handleIntentSweep)
	mux.HandleFunc(TaskSettleRetry, handleSettleRetry)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails":  10,
			"sweeps":  5,
			"default": 1,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	scheduler = asynq.NewScheduler(opts, nil)
	if _, err := scheduler.Register("@every 10m",
		asynq.NewTask(TaskIntentSweep, nil), asynq.Queue("sweeps")); err != nil {
		log.Printf("[alerts] failed to register intent sweep: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("Asynq scheduler stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr())
}

// Close releases the client and stops server and scheduler.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if server != nil {
		server.Shutdown()
	}
}

func handleOrderReceipt(_ context.Context, t *asynq.Task) error {
	var p OrderReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[alerts][ERROR] OrderReceipt send failed: %v", err)
		return err
	}
	log.Printf("[alerts] OrderReceipt sent -> order=%s to=%s", p.OrderID, p.Email)
	return nil
}

func handlePayoutNotice(_ context.Context, t *asynq.Task) error {
	var p PayoutNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[alerts][ERROR] PayoutNotice send failed: %v", err)
		return err
	}
	log.Printf("[alerts] PayoutNotice sent -> order=%s to=%s", p.OrderID, p.Email)
	return nil
}

func handleIntentSweep(ctx context.Context, _ *asynq.Task) error {
	n, err := payments.ExpireStaleIntents(ctx)
	if err != nil {
		log.Printf("[alerts][ERROR] intent sweep failed: %v", err)
		return err
	}
	if n > 0 {
		log.Printf("[alerts] intent sweep expired %d stale intents", n)
	}
	if dropped := payments.SweepFlows(payments.IntentTTL()); dropped > 0 {
		log.Printf("[alerts] intent sweep dropped %d finished confirmation flows", dropped)
	}
	return nil
}

func handleSettleRetry(ctx context.Context, t *asynq.Task) error {
	var p SettleRetryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := payments.SettleIntent(ctx, p.IntentID); err != nil {
		log.Printf("[alerts][ERROR] settle retry failed for intent %s: %v", p.IntentID, err)
		return err
	}
	log.Printf("[alerts] intent %s settled", p.IntentID)
	return nil
}
