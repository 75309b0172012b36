// Package payments integrates the Paystack payment collaborator: initiating
// credit top-up transactions and crediting verified webhook events.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// VerifySignature checks the HMAC-SHA512 hex signature Paystack computes over
// the raw webhook body.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the subset of the Paystack event payload the service consumes.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Metadata  struct {
			UserID  string `json:"user_id"`
			Credits int    `json:"credits"`
		} `json:"metadata"`
	} `json:"data"`
}

// CreditGranter lands verified credits on a user record.
type CreditGranter interface {
	AddCredits(ctx context.Context, userID string, credits int, reference string) error
}

// Processor applies verified webhook events.
type Processor struct {
	granter CreditGranter
}

// NewProcessor constructs a Processor.
func NewProcessor(granter CreditGranter) *Processor {
	return &Processor{granter: granter}
}

// Process parses an already signature-verified body and credits the user on a
// successful charge. Other event kinds are acknowledged without effect.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("payments: decode webhook: %w", err)
	}
	if event.Event != "charge.success" {
		return nil
	}
	if event.Data.Metadata.UserID == "" || event.Data.Metadata.Credits <= 0 {
		return fmt.Errorf("payments: charge.success missing credit metadata")
	}
	return p.granter.AddCredits(ctx, event.Data.Metadata.UserID, event.Data.Metadata.Credits, event.Data.Reference)
}
