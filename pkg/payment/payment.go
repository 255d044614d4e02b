package payment

import (
	"context"
)

// InitializeResponse is what the gateway hands back after accepting an
// initiation: where to send the payer and the reference to verify later.
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResponse reports the gateway-side state of a payment.
type VerifyResponse struct {
	Status      string // e.g. "success", "failed", "abandoned"
	AmountMinor int64  // amount in minor units (kobo)
}

func (v *VerifyResponse) Succeeded() bool {
	return v.Status == "success"
}

// Provider is the payment gateway as the billing flow sees it. Amounts are in
// minor units. Implementations must respect ctx deadlines.
type Provider interface {
	Initialize(ctx context.Context, amountMinor int64, email string) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}
