package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// SweepReportStore implements domain.SweepReportStore using PostgreSQL.
// Decimal columns are NUMERIC so amounts round-trip exactly.
type SweepReportStore struct {
	pool *pgxpool.Pool
}

// NewSweepReportStore creates a new SweepReportStore.
func NewSweepReportStore(pool *pgxpool.Pool) *SweepReportStore {
	return &SweepReportStore{pool: pool}
}

// Create inserts a sweep report.
func (s *SweepReportStore) Create(ctx context.Context, report domain.SweepReport) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sweep_reports (id, ticker, token_address, revenue, quantity, buy_price, sell_price, risk_revenue_ratio, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.ID, report.Ticker, report.Token.Hex(),
		report.Revenue.String(), report.Quantity.String(),
		report.BuyPrice.String(), report.SellPrice.String(),
		report.RiskRevenueRatio.String(), report.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert sweep_report: %w", err)
	}
	return nil
}

// ListRecent returns up to limit reports detected since the given time,
// newest first.
func (s *SweepReportStore) ListRecent(ctx context.Context, since time.Time, limit int) ([]domain.SweepReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ticker, token_address, revenue::text, quantity::text, buy_price::text, sell_price::text, risk_revenue_ratio::text, detected_at
		FROM sweep_reports
		WHERE detected_at >= $1
		ORDER BY detected_at DESC
		LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sweep_reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.SweepReport
	for rows.Next() {
		var (
			report  domain.SweepReport
			token   string
			numeric [5]string
		)
		if err := rows.Scan(
			&report.ID, &report.Ticker, &token,
			&numeric[0], &numeric[1], &numeric[2], &numeric[3], &numeric[4],
			&report.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan sweep_report: %w", err)
		}

		report.Token = common.HexToAddress(token)
		fields := []*decimal.Decimal{
			&report.Revenue, &report.Quantity, &report.BuyPrice,
			&report.SellPrice, &report.RiskRevenueRatio,
		}
		for i, dst := range fields {
			d, err := decimal.NewFromString(numeric[i])
			if err != nil {
				return nil, fmt.Errorf("postgres: decode numeric %q: %w", numeric[i], err)
			}
			*dst = d
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate sweep_reports: %w", err)
	}
	return reports, nil
}

// Compile-time interface check.
var _ domain.SweepReportStore = (*SweepReportStore)(nil)
