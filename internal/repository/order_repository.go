package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-service/internal/fieldcrypt"
	"order-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// DefaultNumberAttempts bounds order number regeneration on collision.
const DefaultNumberAttempts = 5

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	db       Querier
	codec    documentCodec
	numbers  model.NumberGenerator
	attempts int
	now      func() time.Time
	logger   zerolog.Logger
}

// OrderRepositoryOption customises an order repository.
type OrderRepositoryOption func(*orderRepository)

// WithNumberGenerator replaces the order number generator.
func WithNumberGenerator(gen model.NumberGenerator) OrderRepositoryOption {
	return func(r *orderRepository) {
		r.numbers = gen
	}
}

// WithNumberAttempts sets how many order numbers Create tries before giving up.
func WithNumberAttempts(n int) OrderRepositoryOption {
	return func(r *orderRepository) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) OrderRepositoryOption {
	return func(r *orderRepository) {
		r.now = now
	}
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db Querier, cipher fieldcrypt.Cipher, logger zerolog.Logger, opts ...OrderRepositoryOption) OrderRepository {
	r := &orderRepository{
		db:       db,
		codec:    documentCodec{cipher: cipher},
		numbers:  model.GenerateOrderNumber,
		attempts: DefaultNumberAttempts,
		now:      time.Now,
		logger:   logger.With().Str("repository", "order").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserts a new order.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	if err := model.Validate(order); err != nil {
		return err
	}

	order.ID = uuid.New()
	order.Version = 1

	for attempt := 1; attempt <= r.attempts; attempt++ {
		order.OrderNumber = r.numbers(order.CreatedAt)

		err := r.insert(ctx, order)
		if err == nil {
			r.logger.Debug().
				Str("order_number", order.OrderNumber).
				Int("attempt", attempt).
				Msg("order created successfully")
			return nil
		}

		if !isOrderNumberCollision(err) {
			r.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
			clearIdentity(order)
			return fmt.Errorf("failed to create order: %w", err)
		}

		r.logger.Warn().
			Str("order_number", order.OrderNumber).
			Int("attempt", attempt).
			Msg("order number collision, regenerating")
	}

	clearIdentity(order)
	return model.ErrDuplicateOrderNumber
}

// clearIdentity leaves a failed order as it was before Create assigned it a
// row identity.
func clearIdentity(order *model.Order) {
	order.ID = uuid.Nil
	order.Version = 0
	order.OrderNumber = ""
}

func (r *orderRepository) insert(ctx context.Context, order *model.Order) error {
	doc, err := r.codec.encode(order)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(ordersTable).
		Columns(
			orderColumnID,
			orderColumnNumber,
			orderColumnEmail,
			orderColumnStatus,
			orderColumnPaymentStatus,
			orderColumnTotal,
			orderColumnCurrency,
			orderColumnDocument,
			orderColumnVersion,
			orderColumnCreatedAt,
			orderColumnUpdatedAt,
		).
		Values(
			order.ID,
			order.OrderNumber,
			order.Customer.Email,
			string(order.Status),
			string(order.PaymentStatus),
			order.Totals.Total.StringFixed(model.MoneyPlaces),
			order.Totals.Currency,
			doc,
			order.Version,
			order.CreatedAt,
			order.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func isOrderNumberCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolation &&
		pgErr.ConstraintName == orderNumberConstraint
}

// GetByOrderNumber retrieves an order by its order number.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query, args, err := psql.Select(orderSelectColumns...).
		From(ordersTable).
		Where(sq.Eq{orderColumnNumber: orderNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	order, err := r.scanOrder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// ListByCustomerEmail retrieves a page of a customer's orders.
func (r *orderRepository) ListByCustomerEmail(ctx context.Context, email string, limit, offset int) ([]model.Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	query, args, err := psql.Select(orderSelectColumns...).
		From(ordersTable).
		Where(sq.Eq{orderColumnEmail: email}).
		OrderBy(orderColumnCreatedAt+" DESC", orderColumnID).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders by email")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// Update saves order if nobody else has saved it since it was loaded.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	if err := model.Validate(order); err != nil {
		return err
	}

	loadedVersion := order.Version
	order.UpdatedAt = r.now().UTC()
	order.Version = loadedVersion + 1

	doc, err := r.codec.encode(order)
	if err != nil {
		order.Version = loadedVersion
		return err
	}

	query, args, err := psql.Update(ordersTable).
		Set(orderColumnStatus, string(order.Status)).
		Set(orderColumnPaymentStatus, string(order.PaymentStatus)).
		Set(orderColumnTotal, order.Totals.Total.StringFixed(model.MoneyPlaces)).
		Set(orderColumnCurrency, order.Totals.Currency).
		Set(orderColumnDocument, doc).
		Set(orderColumnVersion, sq.Expr(orderColumnVersion+" + 1")).
		Set(orderColumnUpdatedAt, order.UpdatedAt).
		Where(sq.Eq{orderColumnID: order.ID, orderColumnVersion: loadedVersion}).
		ToSql()
	if err != nil {
		order.Version = loadedVersion
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		order.Version = loadedVersion
		r.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		order.Version = loadedVersion
		return r.missingOrStale(ctx, order)
	}

	r.logger.Debug().
		Str("order_number", order.OrderNumber).
		Int("version", order.Version).
		Msg("order updated successfully")

	return nil
}

// missingOrStale explains why an optimistic update matched no row.
func (r *orderRepository) missingOrStale(ctx context.Context, order *model.Order) error {
	query, args, err := psql.Select("1").
		From(ordersTable).
		Where(sq.Eq{orderColumnID: order.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build existence query: %w", err)
	}

	var one int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrOrderNotFound
		}
		return fmt.Errorf("failed to check order existence: %w", err)
	}

	r.logger.Info().
		Str("order_number", order.OrderNumber).
		Int("expected_version", order.Version).
		Msg("order was modified concurrently")

	return model.ErrConcurrencyConflict
}

func (r *orderRepository) scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		id          uuid.UUID
		orderNumber string
		doc         []byte
		version     int
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &orderNumber, &doc, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	order, err := r.codec.decode(doc)
	if err != nil {
		return nil, err
	}

	// Columns are authoritative over the copy inside the document.
	order.ID = id
	order.OrderNumber = orderNumber
	order.Version = version
	order.CreatedAt = createdAt
	order.UpdatedAt = updatedAt

	if len(order.DecryptionFailures) > 0 {
		r.logger.Warn().
			Str("order_number", orderNumber).
			Strs("fields", order.DecryptionFailures).
			Msg("order has fields that could not be decrypted")
	}

	return order, nil
}
