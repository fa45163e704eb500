package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	uniqueViolation          = "23505"
	orderNumberConstraint    = "orders_order_number_key"
	ordersTable              = "orders"
	orderColumnID            = "id"
	orderColumnNumber        = "order_number"
	orderColumnEmail         = "customer_email"
	orderColumnStatus        = "status"
	orderColumnPaymentStatus = "payment_status"
	orderColumnTotal         = "total"
	orderColumnCurrency      = "currency"
	orderColumnDocument      = "document"
	orderColumnVersion       = "version"
	orderColumnCreatedAt     = "created_at"
	orderColumnUpdatedAt     = "updated_at"
)

var orderSelectColumns = []string{
	orderColumnID,
	orderColumnNumber,
	orderColumnDocument,
	orderColumnVersion,
	orderColumnCreatedAt,
	orderColumnUpdatedAt,
}
