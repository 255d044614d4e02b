package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StubProvider accepts everything; for development without gateway
// credentials.
type StubProvider struct{}

func (s *StubProvider) Initialize(ctx context.Context, amountMinor int64, email string) (*InitializeResponse, error) {
	ref := fmt.Sprintf("stub_%d", time.Now().UnixNano())
	return &InitializeResponse{
		AuthorizationURL: "https://checkout.example.test/" + ref,
		Reference:        ref,
	}, nil
}

func (s *StubProvider) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	if strings.HasPrefix(reference, "stub_") {
		return &VerifyResponse{Status: "success"}, nil
	}
	return &VerifyResponse{Status: "failed"}, nil
}
