package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Credit top-up product: one purchase is 1000 NGN (in kobo) for 10 credits.
const (
	TopUpAmountKobo = 100000
	TopUpCredits    = 10
)

// Client calls the Paystack REST API.
type Client struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewClient constructs a Client. An empty baseURL targets the live API.
func NewClient(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email    string       `json:"email"`
	Amount   int          `json:"amount"`
	Metadata TopUpDetails `json:"metadata"`
}

// TopUpDetails travels through Paystack metadata and comes back on the webhook.
type TopUpDetails struct {
	UserID  string `json:"user_id"`
	Credits int    `json:"credits"`
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
	Message string `json:"message"`
}

// InitializeTopUp starts a credit top-up transaction and returns the hosted
// authorization URL the client must visit to pay.
func (c *Client) InitializeTopUp(ctx context.Context, email, userID string) (string, error) {
	body, err := json.Marshal(initializeRequest{
		Email:    email,
		Amount:   TopUpAmountKobo,
		Metadata: TopUpDetails{UserID: userID, Credits: TopUpCredits},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payments: initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("payments: read initialize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payments: paystack returned %s", resp.Status)
	}

	var parsed initializeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("payments: decode initialize response: %w", err)
	}
	if !parsed.Status || parsed.Data.AuthorizationURL == "" {
		return "", fmt.Errorf("payments: initialize rejected: %s", parsed.Message)
	}
	return parsed.Data.AuthorizationURL, nil
}
