// Package sheet implements the order and menu stores against a
// published-spreadsheet CSV for reads and a webhook relay for writes.
// Reads are a full re-parse of the sheet; writes append a complete row
// to the relay, so the last row per order id is the current state.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"comanda-system/internal/common/logger"
	"comanda-system/internal/domain"
)

type Store struct {
	menuURL    string
	ordersURL  string
	webhookURL string
	client     *http.Client
	log        *logger.Logger
	now        func() time.Time
}

func New(menuURL, ordersURL, webhookURL string) *Store {
	return &Store{
		menuURL:    menuURL,
		ordersURL:  ordersURL,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        logger.New("sheet-store"),
		now:        time.Now,
	}
}

// FetchOrders re-reads the whole order sheet and returns the current
// state per order id, last row wins. Malformed rows are logged and
// dropped; they never fail the fetch.
func (s *Store) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.fetchCSV(ctx, s.ordersURL)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	now := s.now()
	byID := make(map[string]int)
	var orders []domain.Order
	for _, row := range rows {
		order, err := parseOrderRow(row, now)
		if err != nil {
			s.log.Debug("order_row_dropped", map[string]any{"reason": err.Error()})
			continue
		}
		if i, ok := byID[order.ID]; ok {
			orders[i] = order
			continue
		}
		byID[order.ID] = len(orders)
		orders = append(orders, order)
	}
	return orders, nil
}

// SubmitOrder appends the order to the log as pending.
func (s *Store) SubmitOrder(ctx context.Context, order domain.Order) error {
	return s.post(ctx, encodeOrder(order, domain.StatusPending))
}

// UpdateStatus appends a full row carrying the new status. Transition
// times already recorded on the order are resent so the log keeps them.
func (s *Store) UpdateStatus(ctx context.Context, order domain.Order, status domain.Status) error {
	return s.post(ctx, encodeOrder(order, status))
}

func (s *Store) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.fetchCSV(ctx, s.menuURL)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	var items []domain.MenuItem
	for i, row := range rows {
		if item, ok := parseMenuRow(row, i); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// fetchCSV downloads a published sheet and returns its data rows keyed
// by lowercased header name.
func (s *Store) fetchCSV(ctx context.Context, url string) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.Trim(strings.TrimSpace(header[i]), `"'`))
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A garbled line is one bad row, not a failed sheet.
			s.log.Debug("csv_row_skipped", map[string]any{"reason": err.Error()})
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) post(ctx context.Context, payload orderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post webhook: status %d", resp.StatusCode)
	}
	return nil
}
