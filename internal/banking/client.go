// Package banking provides a client for the third-party banking endpoint:
// listing account transactions and initiating outbound transfers. The endpoint
// authenticates through session cookies and answers transfer initiations with
// an HTML page whose wording encodes the business outcome.
package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/autohof/settlement-bot/internal/config"
	"github.com/autohof/settlement-bot/internal/domain/transaction"
	"github.com/autohof/settlement-bot/internal/reconcile"
	"github.com/shopspring/decimal"
)

// Business failure reasons reported by the transfer endpoint.
var (
	ErrMalformedAccount  = errors.New("malformed destination account identifier")
	ErrInsufficientFunds = errors.New("insufficient funds on source account")
	ErrUnknownAccount    = errors.New("destination account does not exist")
	ErrTransferRejected  = errors.New("transfer rejected for unknown reason")
)

// Response phrases of the upstream, which answers in German.
const (
	phraseSuccess          = "Deine Überweisung wurde aufgegeben und durchgeführt!"
	phraseMalformedAccount = "Falsches IBAN-Format!"
	phraseNoFunds          = "Zu wenig Geld auf dem Konto!"
	phraseUnknownAccount   = "Zielkonto existiert nicht"
)

// Client talks to the banking endpoint. All credentials are injected at
// construction time and never re-read afterwards.
type Client struct {
	baseURL       string
	cookieHeader  string
	transferToken string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a banking client from the given configuration.
func NewClient(logger *slog.Logger, cfg *config.BankingConfig) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		cookieHeader:  fmt.Sprintf("XSRF-TOKEN=%s; laravel_session=%s", cfg.XSRFToken, cfg.SessionToken),
		transferToken: cfg.TransferToken,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}
}

// transactionsEnvelope is the wire shape of the transaction listing response.
type transactionsEnvelope struct {
	Data []wireTransaction `json:"data"`
}

// wireTransaction carries amounts and timestamps as strings; they are parsed
// into typed values at this boundary.
type wireTransaction struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
	Initiator   string `json:"initiator"`
	Info        string `json:"info"`
	Type        string `json:"type"`
	CreatedAt   string `json:"created_at"`
}

// Transactions fetches all transactions recorded for the given account.
// A transaction whose amount fails to parse is skipped with a warning; any
// transport or authentication failure is returned and fatal to the run.
func (c *Client) Transactions(ctx context.Context, account string) ([]transaction.Transaction, error) {
	endpoint := fmt.Sprintf("%s/banking/%s/data", c.baseURL, account)

	body, err := c.post(ctx, endpoint, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("fetching transactions for account %s: %w", account, err)
	}

	var envelope transactionsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding transaction listing for account %s: %w", account, err)
	}

	txns := make([]transaction.Transaction, 0, len(envelope.Data))
	for _, w := range envelope.Data {
		amount, err := decimal.NewFromString(w.Amount)
		if err != nil {
			c.logger.Warn("skipping transaction with unparseable amount",
				"transaction_id", w.ID, "amount", w.Amount, "error", err)
			continue
		}
		txns = append(txns, transaction.Transaction{
			ID:          w.ID,
			Source:      w.Source,
			Destination: w.Destination,
			Initiator:   w.Initiator,
			Info:        w.Info,
			Kind:        transaction.Kind(w.Type),
			Amount:      amount,
			OccurredAt:  w.CreatedAt,
		})
	}
	return txns, nil
}

// IncomingSettlements fetches the account's transactions and narrows them to
// the settlement window anchored at the given reference instant. An empty
// result is valid and signals that no settlement activity happened.
func (c *Client) IncomingSettlements(ctx context.Context, account string, reference time.Time) ([]transaction.Transaction, error) {
	txns, err := c.Transactions(ctx, account)
	if err != nil {
		return nil, err
	}
	return reconcile.Incoming(reference, account, txns), nil
}

// transferRequest is the wire shape of a transfer initiation.
type transferRequest struct {
	Token  string `json:"_token"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	IBAN   string `json:"iban"`
	Info   string `json:"info"`
}

// Transfer initiates an outbound transfer from one account to another. The
// endpoint answers with an HTML page; the wording is classified into the typed
// business errors above.
func (c *Client) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, memo string) error {
	endpoint := fmt.Sprintf("%s/banking/%s", c.baseURL, from)

	body, err := c.post(ctx, endpoint, transferRequest{
		Token:  c.transferToken,
		Type:   "init_transaction",
		Amount: amount.String(),
		IBAN:   to,
		Info:   memo,
	})
	if err != nil {
		return fmt.Errorf("initiating transfer to %s: %w", to, err)
	}

	if bytes.Contains(body, []byte(phraseSuccess)) {
		return nil
	}

	switch {
	case bytes.Contains(body, []byte(phraseMalformedAccount)):
		return fmt.Errorf("transfer to %s: %w", to, ErrMalformedAccount)
	case bytes.Contains(body, []byte(phraseNoFunds)):
		return fmt.Errorf("transfer to %s: %w", to, ErrInsufficientFunds)
	case bytes.Contains(body, []byte(phraseUnknownAccount)):
		return fmt.Errorf("transfer to %s: %w", to, ErrUnknownAccount)
	}

	c.logger.Debug("unrecognized transfer response", "length", len(body))
	return fmt.Errorf("transfer to %s: %w", to, ErrTransferRejected)
}

// post sends an authenticated JSON POST and returns the raw response body.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", c.cookieHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return body, nil
}
