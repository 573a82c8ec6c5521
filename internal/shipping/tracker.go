// Package shipping proxies the third-party tracking API. It is best-effort
// by contract: failures and missing data collapse into the waiting state and
// never surface as errors to the user.
package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"time"
)

// StatusAwaitingShipment is the displayable state for an order with no
// usable tracking data.
const StatusAwaitingShipment = "waiting to be shipped"

type Tracker struct {
	baseURL string
	client  *http.Client
}

// NewTrackerFromEnv reads TRACKING_API_URL. An empty base URL is fine; the
// tracker then always reports the waiting state.
func NewTrackerFromEnv() *Tracker {
	return &Tracker{
		baseURL: os.Getenv("TRACKING_API_URL"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func NewTracker(baseURL string) *Tracker {
	return &Tracker{baseURL: baseURL, client: &http.Client{Timeout: 10 * time.Second}}
}

// Status looks up the carrier status for a shipment.
func (t *Tracker) Status(ctx context.Context, trackingNumber, carrierCode string) string {
	if t.baseURL == "" || trackingNumber == "" {
		return StatusAwaitingShipment
	}

	q := url.Values{}
	q.Set("tracking_number", trackingNumber)
	q.Set("carrier_code", carrierCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return StatusAwaitingShipment
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return StatusAwaitingShipment
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return StatusAwaitingShipment
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status == "" {
		return StatusAwaitingShipment
	}
	return body.Status
}
