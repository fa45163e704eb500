package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"order-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// analyticsRepository aggregates directly over the orders table.
type analyticsRepository struct {
	db     Querier
	logger zerolog.Logger
}

// NewAnalyticsRepository creates a new PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(db Querier, logger zerolog.Logger) AnalyticsRepository {
	return &analyticsRepository{
		db:     db,
		logger: logger.With().Str("repository", "analytics").Logger(),
	}
}

func inWindow(column string, w model.Window) sq.And {
	return sq.And{
		sq.GtOrEq{column: w.Start},
		sq.LtOrEq{column: w.End},
	}
}

// Summary aggregates order count, revenue and status counts for the window.
func (r *analyticsRepository) Summary(ctx context.Context, window model.Window) (*model.Summary, error) {
	query, args, err := psql.Select("COUNT(*)").
		Column("COALESCE(SUM(total), 0)::text").
		Column("COALESCE(AVG(total), 0)::text").
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", string(model.StatusPending))).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", string(model.StatusDelivered))).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", string(model.StatusCancelled))).
		From(ordersTable).
		Where(inWindow(orderColumnCreatedAt, window)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build summary query: %w", err)
	}

	var (
		summary = model.Summary{Window: window}
		revenue string
		average string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&summary.TotalOrders,
		&revenue,
		&average,
		&summary.PendingCount,
		&summary.DeliveredCount,
		&summary.CancelledCount,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order summary")
		return nil, fmt.Errorf("failed to query order summary: %w", err)
	}

	if summary.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, fmt.Errorf("failed to parse revenue %q: %w", revenue, err)
	}
	avg, err := decimal.NewFromString(average)
	if err != nil {
		return nil, fmt.Errorf("failed to parse average %q: %w", average, err)
	}
	summary.AverageOrderValue = avg.Round(model.MoneyPlaces)

	return &summary, nil
}

// TopProducts ranks products by quantity over non-cancelled orders. Ties go to
// the product ordered first, then to the smaller product reference.
func (r *analyticsRepository) TopProducts(ctx context.Context, window model.Window, limit int) ([]model.ProductStat, error) {
	query, args, err := psql.Select(
		"item->>'productRef' AS product_ref",
		"SUM((item->>'quantity')::int) AS total_quantity",
		"SUM((item->>'totalPrice')::numeric)::text AS total_revenue",
		"COUNT(*) AS order_count",
		"(ARRAY_AGG(item->'productSnapshot'->'name' ORDER BY o.created_at))[1] AS name_snapshot",
		"COALESCE((ARRAY_AGG(item->'productSnapshot'->>'sku' ORDER BY o.created_at))[1], '') AS sku",
	).
		From("orders o CROSS JOIN LATERAL jsonb_array_elements(o.document->'items') AS item").
		Where(inWindow("o.created_at", window)).
		Where(sq.NotEq{"o.status": string(model.StatusCancelled)}).
		GroupBy("item->>'productRef'").
		OrderBy("total_quantity DESC", "MIN(o.created_at) ASC", "product_ref ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top products query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	stats := []model.ProductStat{}
	for rows.Next() {
		var (
			stat    model.ProductStat
			revenue string
			name    []byte
		)
		if err := rows.Scan(&stat.ProductRef, &stat.TotalQuantity, &revenue, &stat.OrderCount, &name, &stat.SKU); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product stat row")
			return nil, fmt.Errorf("failed to scan product stat: %w", err)
		}

		if stat.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("failed to parse product revenue %q: %w", revenue, err)
		}
		if len(name) > 0 {
			if err := json.Unmarshal(name, &stat.NameSnapshot); err != nil {
				return nil, fmt.Errorf("failed to decode product name for %s: %w", stat.ProductRef, err)
			}
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product stat rows")
		return nil, fmt.Errorf("error iterating product stats: %w", err)
	}

	return stats, nil
}
