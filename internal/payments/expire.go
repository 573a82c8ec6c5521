package payments

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/foodsource-dev/foodsource/internal/db"
)

const defaultIntentTTLMinutes = 60

// IntentTTL reads INTENT_TTL_MINUTES, defaulting to an hour. Intents pending
// longer than this were abandoned at the payment sheet.
func IntentTTL() time.Duration {
	if v := os.Getenv("INTENT_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return defaultIntentTTLMinutes * time.Minute
}

// ExpireStaleIntents marks abandoned intents expired so reconciliation
// reports can exclude them. The processor expires the uncaptured charge on
// its own; nothing is sent upstream.
func ExpireStaleIntents(ctx context.Context) (int64, error) {
	store := NewMongoIntentStore(db.Collection("payment_intents"))
	return store.ExpireOlderThan(ctx, time.Now().Add(-IntentTTL()))
}

// SettleIntent flips a stored intent to completed outside the request path.
// The settle retry task uses it when the in-request flip failed; a captured
// payment left pending would be misread as abandoned by the expiry sweep.
func SettleIntent(ctx context.Context, intentID string) error {
	store := NewMongoIntentStore(db.Collection("payment_intents"))
	return store.MarkCompleted(ctx, intentID)
}
