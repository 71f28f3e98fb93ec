package momo

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

	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
)

const (
	sandboxEnv = "sandbox"
	liveEnv    = "live"

	disbursePath = "/v1/disbursements"
)

var (
	errBaseURLRequired = errors.New("momo base url is required")
	errAPIKeyRequired  = errors.New("momo api key is required")
	errInvalidMoMoEnv  = fmt.Errorf("momo environment must be %q or %q", sandboxEnv, liveEnv)
)

// Client talks to the mobile-money aggregator's disbursement API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	environment string
}

// DisbursementRequest asks the aggregator to pay out an escrow tranche.
type DisbursementRequest struct {
	Reference   string          `json:"reference"`
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Narration   string          `json:"narration,omitempty"`
}

// DisbursementResponse is the aggregator's acknowledgement.
type DisbursementResponse struct {
	ProviderReference string `json:"provider_reference"`
	Status            string `json:"status"`
}

// APIError carries the aggregator's error payload plus the HTTP status.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("momo api error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// Retryable reports whether the failure is worth another attempt.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewClient initializes the gateway client with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.MoMoConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("momo client initialized (%s)", env))
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		environment: env,
	}, nil
}

// Environment reports the normalized gateway environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Disburse submits a payout request. The reference doubles as the aggregator's
// idempotency key, so replaying a request after a timeout is safe.
func (c *Client) Disburse(ctx context.Context, req DisbursementRequest) (*DisbursementResponse, error) {
	if strings.TrimSpace(req.Reference) == "" {
		return nil, fmt.Errorf("disbursement reference is required")
	}
	if strings.TrimSpace(req.RecipientID) == "" {
		return nil, fmt.Errorf("disbursement recipient is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("disbursement amount must be positive")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode disbursement request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+disbursePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build disbursement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.Reference)
	httpReq.Header.Set("X-Target-Environment", c.environment)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("momo disbursement call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read momo response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(payload, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(payload))
		}
		return nil, apiErr
	}

	var out DisbursementResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode momo response: %w", err)
	}
	return &out, nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidMoMoEnv
	}
}
