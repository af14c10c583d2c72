// Package firefly implements the HTTP client for the Firefly III
// transactions API: bearer-token auth, page-by-page retrieval, and bounded
// retries for transient failures.
package firefly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fireview/internal/core"
)

const (
	defaultPageSize    = 100
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// Client talks to a Firefly III instance.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	pageSize    int
	maxAttempts int
	backoff     time.Duration
}

// FetchError reports a failed fetch for one transaction type and window.
// The orchestrator relies on it to identify which leg of the fan-out broke.
type FetchError struct {
	Type   core.TransactionType
	Window core.Window
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s transactions for %s: %v", e.Type, e.Window.Key(), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New creates a client for the given base URL and personal access token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		pageSize:    defaultPageSize,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// transactionsPage mirrors the slice of the API response we need: journal
// groups with their splits, plus the pagination meta.
type transactionsPage struct {
	Data []struct {
		Attributes struct {
			Description  string             `json:"description"`
			Transactions []transactionSplit `json:"transactions"`
		} `json:"attributes"`
	} `json:"data"`
	Meta struct {
		Pagination struct {
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	} `json:"meta"`
}

type transactionSplit struct {
	JournalID           string `json:"transaction_journal_id"`
	Date                string `json:"date"`
	Amount              string `json:"amount"`
	CurrencyCode        string `json:"currency_code"`
	ForeignCurrencyCode string `json:"foreign_currency_code"`
	CategoryName        string `json:"category_name"`
	SourceName          string `json:"source_name"`
	DestinationName     string `json:"destination_name"`
}

// FetchTransactions retrieves every transaction of the given type inside the
// window, following pagination until exhausted. The result is fully
// materialized; a failure on any page surfaces as *FetchError, never as
// partial data.
func (c *Client) FetchTransactions(ctx context.Context, txType core.TransactionType, window core.Window) ([]core.Transaction, error) {
	if err := txType.Validate(); err != nil {
		return nil, &FetchError{Type: txType, Window: window, Err: err}
	}

	var out []core.Transaction
	page := 1
	for {
		payload, err := c.fetchPage(ctx, txType, window, page)
		if err != nil {
			return nil, &FetchError{Type: txType, Window: window, Err: err}
		}
		for _, group := range payload.Data {
			for _, split := range group.Attributes.Transactions {
				tx, err := parseSplit(split, txType, group.Attributes.Description)
				if err != nil {
					return nil, &FetchError{Type: txType, Window: window, Err: err}
				}
				out = append(out, tx)
			}
		}
		// Mirror of the upstream contract: stop once the reported page count
		// is reached; a missing count means a single page.
		if page >= payload.Meta.Pagination.TotalPages {
			break
		}
		page++
	}
	return out, nil
}

// fetchPage issues one paginated request, retrying transient failures up to
// the attempt budget with linear backoff.
func (c *Client) fetchPage(ctx context.Context, txType core.TransactionType, window core.Window, page int) (*transactionsPage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			}
		}

		payload, retryable, err := c.doRequest(ctx, txType, window, page)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, txType core.TransactionType, window core.Window, page int) (*transactionsPage, bool, error) {
	endpoint := c.baseURL + "/api/v1/transactions"
	params := url.Values{}
	params.Set("type", txType.String())
	params.Set("start", window.Start.Format("2006-01-02"))
	params.Set("end", window.End.Format("2006-01-02"))
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, isTransient(err), fmt.Errorf("request page %d: %w", page, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read page %d: %w", page, err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("page %d: status %d", page, resp.StatusCode)
	}

	var payload transactionsPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decode page %d: %w", page, err)
	}
	return &payload, false, nil
}

func parseSplit(split transactionSplit, txType core.TransactionType, description string) (core.Transaction, error) {
	amount, err := decimal.NewFromString(split.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("journal %s: bad amount %q: %w", split.JournalID, split.Amount, err)
	}
	bookedAt, err := time.Parse(time.RFC3339, split.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("journal %s: bad date %q: %w", split.JournalID, split.Date, err)
	}

	currency := split.CurrencyCode
	if currency == "" {
		currency = split.ForeignCurrencyCode
	}
	category := split.CategoryName
	if category == "" {
		category = "Uncategorized"
	}
	source := split.SourceName
	if source == "" {
		source = "Unknown account"
	}
	destination := split.DestinationName
	if destination == "" {
		destination = "Unknown account"
	}

	return core.Transaction{
		JournalID:   split.JournalID,
		Type:        txType,
		BookedAt:    bookedAt,
		Amount:      amount.Abs(),
		Currency:    currency,
		Category:    category,
		Source:      source,
		Destination: destination,
		Description: description,
	}, nil
}

// isTransient classifies network-level failures worth retrying.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
