package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

const transactionsTable = "transactions"

// BigQueryStore is the production TransactionStore backed by a BigQuery
// transactions table. Every query binds its filters as parameters and
// scopes rows to the client id server-side; filter values never reach
// the SQL text.
type BigQueryStore struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

func NewBigQueryStore(ctx context.Context, projectID, datasetID string) (*BigQueryStore, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryStore: bigquery client: %w", err)
	}
	return &BigQueryStore{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// NewBigQueryStoreWithClient wraps an existing client, e.g. in tests.
func NewBigQueryStoreWithClient(client *bigquery.Client, projectID, datasetID string) *BigQueryStore {
	return &BigQueryStore{client: client, projectID: projectID, datasetID: datasetID}
}

func (s *BigQueryStore) Close() error {
	return s.client.Close()
}

func (s *BigQueryStore) table() string {
	return fmt.Sprintf("`%s.%s.%s`", s.projectID, s.datasetID, transactionsTable)
}

type aggregateRow struct {
	Total float64 `bigquery:"total"`
	Count int64   `bigquery:"cnt"`
}

// Aggregate runs one parameterized aggregate query. Optional filters
// append fixed clause text only; values are always bound.
func (s *BigQueryStore) Aggregate(ctx context.Context, req QueryRequest) (domain.AggregateAnswer, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `
		SELECT
			COALESCE(SUM(ABS(amt)), 0) AS total,
			COUNT(*) AS cnt
		FROM %s
		WHERE clnt_id = @client_id
	`, s.table())

	params := []bigquery.QueryParameter{
		{Name: "client_id", Value: req.ClientID},
	}
	if req.TimeRange != nil {
		b.WriteString(" AND txn_date >= @start_date AND txn_date < @end_date")
		params = append(params,
			bigquery.QueryParameter{Name: "start_date", Value: req.TimeRange.Start},
			bigquery.QueryParameter{Name: "end_date", Value: req.TimeRange.End},
		)
	}
	if req.Category != "" {
		b.WriteString(" AND LOWER(cat) = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: strings.ToLower(req.Category)})
	}
	if req.Merchant != "" {
		b.WriteString(" AND LOWER(merchant) = @merchant")
		params = append(params, bigquery.QueryParameter{Name: "merchant", Value: strings.ToLower(req.Merchant)})
	}

	q := s.client.Query(b.String())
	q.Parameters = params

	var row aggregateRow
	if err := s.readOne(ctx, q, &row); err != nil {
		return domain.AggregateAnswer{}, fmt.Errorf("Aggregate: %w", err)
	}

	ans := domain.AggregateAnswer{
		Total: decimal.NewFromFloat(row.Total).Round(2),
		Count: row.Count,
	}
	if req.Aggregation == domain.AggregationAverage && row.Count > 0 {
		ans.Total = ans.Total.DivRound(decimal.NewFromInt(row.Count), 2)
	}
	return ans, nil
}

func (s *BigQueryStore) Merchants(ctx context.Context, clientID int) ([]string, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT DISTINCT merchant
		FROM %s
		WHERE clnt_id = @client_id
		  AND merchant IS NOT NULL
		  AND LOWER(merchant) != 'unknown'
		ORDER BY merchant
	`, s.table()))
	q.Parameters = []bigquery.QueryParameter{{Name: "client_id", Value: clientID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Merchants: query read: %w", err)
	}

	var names []string
	for {
		var row struct {
			Merchant string `bigquery:"merchant"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Merchants: iter next: %w", err)
		}
		names = append(names, row.Merchant)
	}
	return names, nil
}

type summaryRow struct {
	ClientID int64                  `bigquery:"clnt_id"`
	Count    int64                  `bigquery:"cnt"`
	Total    float64                `bigquery:"total"`
	First    bigquery.NullTimestamp `bigquery:"first_txn"`
	Last     bigquery.NullTimestamp `bigquery:"last_txn"`
}

func (s *BigQueryStore) LatestDate(ctx context.Context, clientID int) (time.Time, error) {
	summary, err := s.ClientSummary(ctx, clientID)
	if err != nil {
		return time.Time{}, err
	}
	return summary.LastTransaction, nil
}

func (s *BigQueryStore) ClientSummary(ctx context.Context, clientID int) (domain.ClientSummary, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			@client_id AS clnt_id,
			COUNT(*) AS cnt,
			COALESCE(SUM(ABS(amt)), 0) AS total,
			MIN(txn_date) AS first_txn,
			MAX(txn_date) AS last_txn
		FROM %s
		WHERE clnt_id = @client_id
	`, s.table()))
	q.Parameters = []bigquery.QueryParameter{{Name: "client_id", Value: clientID}}

	var row summaryRow
	if err := s.readOne(ctx, q, &row); err != nil {
		return domain.ClientSummary{}, fmt.Errorf("ClientSummary: %w", err)
	}
	if row.Count == 0 {
		return domain.ClientSummary{}, domain.ErrUnknownClient
	}
	return summaryFromRow(row), nil
}

func (s *BigQueryStore) Clients(ctx context.Context) ([]domain.ClientSummary, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			clnt_id,
			COUNT(*) AS cnt,
			COALESCE(SUM(ABS(amt)), 0) AS total,
			MIN(txn_date) AS first_txn,
			MAX(txn_date) AS last_txn
		FROM %s
		GROUP BY clnt_id
		ORDER BY clnt_id
	`, s.table()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Clients: query read: %w", err)
	}

	var summaries []domain.ClientSummary
	for {
		var row summaryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Clients: iter next: %w", err)
		}
		summaries = append(summaries, summaryFromRow(row))
	}
	return summaries, nil
}

func summaryFromRow(row summaryRow) domain.ClientSummary {
	summary := domain.ClientSummary{
		ClientID:         int(row.ClientID),
		TransactionCount: row.Count,
		TotalSpending:    decimal.NewFromFloat(row.Total).Round(2),
	}
	if row.First.Valid {
		summary.FirstTransaction = row.First.Timestamp
	}
	if row.Last.Valid {
		summary.LastTransaction = row.Last.Timestamp
	}
	return summary
}

func (s *BigQueryStore) readOne(ctx context.Context, q *bigquery.Query, dst interface{}) error {
	it, err := q.Read(ctx)
	if err != nil {
		return fmt.Errorf("query read: %w", err)
	}
	if err := it.Next(dst); err != nil {
		return fmt.Errorf("iter next: %w", err)
	}
	return nil
}
