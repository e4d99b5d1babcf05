package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchkit/launchkit/internal/pkg/env"
)

const (
	defaultPolarAPIBaseURL = "https://api.polar.sh/v1"
	sandboxPolarAPIBaseURL = "https://sandbox-api.polar.sh/v1"
)

// PolarClient is a thin client for the payment provider's checkout and
// customer portal APIs. Subscription state itself arrives via webhooks;
// this client only opens hosted provider pages.
type PolarClient struct {
	AccessToken string
	APIBaseURL  string
	SuccessURL  string

	HTTPClient *http.Client
}

// NewPolarClientFromEnv builds a client from POLAR_* environment variables.
// POLAR_SERVER=sandbox switches to the provider's sandbox API.
func NewPolarClientFromEnv() *PolarClient {
	baseURL := strings.TrimSpace(env.GetEnv("POLAR_API_BASE_URL", ""))
	if baseURL == "" {
		baseURL = defaultPolarAPIBaseURL
		if strings.EqualFold(env.GetEnv("POLAR_SERVER", ""), "sandbox") {
			baseURL = sandboxPolarAPIBaseURL
		}
	}

	successURL := strings.TrimSpace(env.GetEnv("POLAR_SUCCESS_URL", ""))
	if base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"); base != "" && successURL != "" && !strings.HasPrefix(successURL, "http") {
		successURL = base + "/" + strings.TrimLeft(successURL, "/")
	}

	return &PolarClient{
		AccessToken: strings.TrimSpace(env.GetEnv("POLAR_ACCESS_TOKEN", "")),
		APIBaseURL:  strings.TrimRight(baseURL, "/"),
		SuccessURL:  successURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckout opens a provider checkout session for one product and
// returns the hosted checkout URL. The external customer id ties the
// resulting subscription back to the local user through webhook payloads.
func (c *PolarClient) CreateCheckout(ctx context.Context, productID, externalCustomerID string) (string, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return "", errors.New("POLAR_ACCESS_TOKEN is not configured")
	}
	if strings.TrimSpace(productID) == "" {
		return "", errors.New("product id is required")
	}

	body := map[string]any{
		"products":            []string{productID},
		"client_reference_id": uuid.NewString(),
	}
	if c.SuccessURL != "" {
		body["success_url"] = c.SuccessURL
	}
	if strings.TrimSpace(externalCustomerID) != "" {
		body["external_customer_id"] = strings.TrimSpace(externalCustomerID)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/checkouts", body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", errors.New("checkout response missing url")
	}
	return out.URL, nil
}

// CustomerPortalURL creates a customer session and returns the hosted
// portal URL where the customer manages the subscription.
func (c *PolarClient) CustomerPortalURL(ctx context.Context, externalCustomerID string) (string, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return "", errors.New("POLAR_ACCESS_TOKEN is not configured")
	}
	if strings.TrimSpace(externalCustomerID) == "" {
		return "", errors.New("external customer id is required")
	}

	var out struct {
		CustomerPortalURL string `json:"customer_portal_url"`
	}
	body := map[string]any{"external_customer_id": strings.TrimSpace(externalCustomerID)}
	if err := c.post(ctx, "/customer-sessions", body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.CustomerPortalURL) == "" {
		return "", errors.New("customer session response missing portal url")
	}
	return out.CustomerPortalURL, nil
}

func (c *PolarClient) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("polar request %s failed: status=%d body=%s", path, resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}
