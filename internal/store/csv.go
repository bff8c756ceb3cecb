package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/gcs"
)

// Dataset CSV column headers, matching the transaction dump schema.
const (
	colClientID = "clnt_id"
	colTxnID    = "txn_id"
	colTxnDate  = "txn_date"
	colDesc     = "desc"
	colAmount   = "amt"
	colCategory = "cat"
	colMerchant = "merchant"
)

// LoadDataset reads a transaction CSV from a local path or a gs:// URI
// and builds an in-memory store over it.
func LoadDataset(ctx context.Context, path string) (*MemoryStore, error) {
	var data []byte
	var err error
	if strings.HasPrefix(path, "gs://") {
		data, err = gcs.Download(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("LoadDataset: reading %s: %w", path, err)
	}

	txns, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("LoadDataset: %w", err)
	}
	return NewMemoryStore(txns), nil
}

// ParseCSV decodes transaction rows from a header-first CSV stream.
// Transaction dates accept both date-only and datetime forms.
func ParseCSV(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colClientID, colTxnDate, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ParseCSV: missing required column %q", required)
		}
	}

	var txns []domain.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: reading row %d: %w", line, err)
		}

		t, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: row %d: %w", line, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func parseRow(record []string, cols map[string]int) (domain.Transaction, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	clientID, err := strconv.Atoi(field(colClientID))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid %s %q", colClientID, field(colClientID))
	}

	date, err := parseTxnDate(field(colTxnDate))
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := decimal.NewFromString(field(colAmount))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid %s %q", colAmount, field(colAmount))
	}

	txnID, _ := strconv.ParseInt(field(colTxnID), 10, 64)

	return domain.Transaction{
		ClientID:    clientID,
		TxnID:       txnID,
		Date:        date,
		Description: field(colDesc),
		Amount:      amount,
		Category:    field(colCategory),
		Merchant:    field(colMerchant),
	}, nil
}

func parseTxnDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", colTxnDate, s)
}
