package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// PaystackProvider talks to the Paystack transaction API.
type PaystackProvider struct {
	BaseURL string
	Secret  string
	client  *http.Client
}

func NewPaystackProvider(baseURL, secret string, timeout time.Duration) *PaystackProvider {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PaystackProvider{
		BaseURL: baseURL,
		Secret:  secret,
		client:  &http.Client{Timeout: timeout},
	}
}

type paystackInitReq struct {
	Amount int64  `json:"amount"`
	Email  string `json:"email"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

func (p *PaystackProvider) Initialize(ctx context.Context, amountMinor int64, email string) (*InitializeResponse, error) {
	body, _ := json.Marshal(paystackInitReq{Amount: amountMinor, Email: email})
	env, err := p.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack initialize declined: %s", env.Message)
	}
	var data paystackInitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (p *PaystackProvider) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	env, err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack verify declined: %s", env.Message)
	}
	var data paystackVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &VerifyResponse{Status: data.Status, AmountMinor: data.Amount}, nil
}

func (p *PaystackProvider) do(ctx context.Context, method, path string, body *bytes.Reader) (*paystackEnvelope, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, p.BaseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.Secret)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("paystack %s: decoding response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("paystack %s: %s", path, msg)
	}
	return &env, nil
}
