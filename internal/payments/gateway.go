package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

// Gateway talks to the first-party payment function which fronts the
// processor. Two hops means two independent failure points: transport
// failures, processor rejections and malformed replies are surfaced as
// distinct kinds.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{baseURL: baseURL, apiKey: apiKey, client: http.DefaultClient}
}

// GatewayFromEnv loads gateway config from environment.
// Required: PAYMENT_GATEWAY_URL; optional: PAYMENT_GATEWAY_KEY.
func GatewayFromEnv() (*Gateway, error) {
	base := os.Getenv("PAYMENT_GATEWAY_URL")
	if base == "" {
		return nil, fmt.Errorf("payment gateway not configured: set PAYMENT_GATEWAY_URL")
	}
	return NewGateway(base, os.Getenv("PAYMENT_GATEWAY_KEY")), nil
}

// IntentParams mirror the callable contract: integer minor units, the
// destination sub-account and the shipping address. The 1% platform fee is
// withheld gateway-side.
type IntentParams struct {
	AmountCents     int64  `json:"amount"`
	Currency        string `json:"currency"`
	OnBehalfOf      string `json:"onBehalfOf"`
	ShippingAddress string `json:"shippingAddress"`
}

func (g *Gateway) call(ctx context.Context, fn string, data interface{}, out interface{}) error {
	body, _ := json.Marshal(map[string]interface{}{"data": data})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return apperr.E(apperr.Network, "payments.gateway", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return apperr.E(apperr.Network, "payments.gateway", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMsg string
		if b, readErr := io.ReadAll(resp.Body); readErr == nil && len(b) > 0 {
			errMsg = string(b)
		}
		return apperr.E(apperr.ProcessorRejection, "payments.gateway",
			fmt.Errorf("%s failed: status=%d body=%s", fn, resp.StatusCode, errMsg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.E(apperr.Validation, "payments.gateway",
			fmt.Errorf("%s: undecodable response: %w", fn, err))
	}
	return nil
}

// CreateIntent requests a payment intent and returns the client secret the
// buyer confirms with. The callable wraps its own result, so the secret sits
// two levels deep; a missing field is a malformed-response failure, not a
// rejection.
func (g *Gateway) CreateIntent(ctx context.Context, params IntentParams) (string, error) {
	var resp struct {
		Result struct {
			Result struct {
				ClientSecret string `json:"client_secret"`
			} `json:"result"`
		} `json:"result"`
	}
	if err := g.call(ctx, "createPaymentIntent", params, &resp); err != nil {
		return "", err
	}
	if resp.Result.Result.ClientSecret == "" {
		return "", apperr.E(apperr.Validation, "payments.CreateIntent",
			fmt.Errorf("malformed processor response: client_secret missing"))
	}
	return resp.Result.Result.ClientSecret, nil
}

// CreateAccount provisions a processor sub-account for a seller.
func (g *Gateway) CreateAccount(ctx context.Context, email string) (string, error) {
	var resp struct {
		Result struct {
			AccountID string `json:"accountId"`
		} `json:"result"`
	}
	data := map[string]string{"email": email}
	if err := g.call(ctx, "createStripeAccount", data, &resp); err != nil {
		return "", err
	}
	if resp.Result.AccountID == "" {
		return "", apperr.E(apperr.Validation, "payments.CreateAccount",
			fmt.Errorf("malformed processor response: accountId missing"))
	}
	return resp.Result.AccountID, nil
}

// CreateAccountLink returns a hosted onboarding URL for the sub-account.
func (g *Gateway) CreateAccountLink(ctx context.Context, accountID string) (string, error) {
	var resp struct {
		Result struct {
			URL string `json:"url"`
		} `json:"result"`
	}
	data := map[string]string{"accountId": accountID}
	if err := g.call(ctx, "createAccountLink", data, &resp); err != nil {
		return "", err
	}
	if resp.Result.URL == "" {
		return "", apperr.E(apperr.Validation, "payments.CreateAccountLink",
			fmt.Errorf("malformed processor response: url missing"))
	}
	return resp.Result.URL, nil
}
