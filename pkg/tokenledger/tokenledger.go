// Package tokenledger is the client for the external fungible-token
// ledger the settlement core moves funds through. The core only ever
// pulls a pre-authorized amount from a payer into the pool account, or
// pushes an amount from the pool account to a payee; everything else
// about the ledger is someone else's problem.
package tokenledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Errors surfaced by ledger implementations. Pull distinguishes a payer
// who never authorized enough from any other transfer failure, because
// the settlement core reports them as different error kinds.
var (
	ErrInsufficientAllowance = errors.New("payer allowance below requested amount")
	ErrTransferFailed        = errors.New("ledger transfer failed")
)

// Ledger moves funds between the pool and external accounts. Both calls
// are boundary calls: they can fail, and the caller owns all bookkeeping.
type Ledger interface {
	// Pull transfers amount from payer into the pool account. Requires the
	// payer to have pre-authorized at least amount.
	Pull(ctx context.Context, payer string, amount int64) error
	// Push transfers amount from the pool account to payee.
	Push(ctx context.Context, payee string, amount int64) error
}

// Client is an HTTP implementation of Ledger talking to the token
// ledger's transfer API.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewClient creates a new ledger API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type transferRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

type transferResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Pull transfers amount from payer into the pool account
func (c *Client) Pull(ctx context.Context, payer string, amount int64) error {
	return c.transfer(ctx, "/transfers/pull", payer, amount)
}

// Push transfers amount from the pool account to payee
func (c *Client) Push(ctx context.Context, payee string, amount int64) error {
	return c.transfer(ctx, "/transfers/push", payee, amount)
}

func (c *Client) transfer(ctx context.Context, path, account string, amount int64) error {
	body, err := json.Marshal(transferRequest{Account: account, Amount: amount})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	var result transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrTransferFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && result.Status == "SUCCESS":
		return nil
	case resp.StatusCode == http.StatusPaymentRequired || result.Reason == "INSUFFICIENT_ALLOWANCE":
		return ErrInsufficientAllowance
	default:
		return fmt.Errorf("%w: %s (status %d)", ErrTransferFailed, result.Reason, resp.StatusCode)
	}
}
