package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-service/internal/events"
	"order-service/internal/model"
	"order-service/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultListLimit and MaxListLimit bound ListOrdersByEmail pages.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	metrics   Recorder
	now       func() time.Time
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	metrics Recorder,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order from a checkout payload.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	now := s.now().UTC()

	order, err := model.NewOrder(req, now)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, model.ErrDuplicateOrderNumber) {
			s.logger.Error().Err(err).Msg("order number space exhausted")
		}
		return nil, err
	}

	s.metrics.OrderCreated()
	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int("item_count", order.ItemCount()).
		Str("total", order.Totals.Total.StringFixed(model.MoneyPlaces)).
		Msg("order created successfully")

	s.publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, order, "", now))

	return model.NewOrderResponse(order), nil
}

// GetOrder retrieves an order by its order number.
func (s *orderService) GetOrder(ctx context.Context, orderNumber string) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to retrieve order")
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	return model.NewOrderResponse(order), nil
}

// ListOrdersByEmail retrieves a page of a customer's orders.
func (s *orderService) ListOrdersByEmail(ctx context.Context, email string, limit, offset int) ([]model.OrderResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, model.NewValidationError("email", "is required")
	}
	if offset < 0 {
		return nil, model.NewValidationError("offset", "cannot be negative")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := s.orderRepo.ListByCustomerEmail(ctx, email, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]model.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *model.NewOrderResponse(&orders[i])
	}
	return responses, nil
}

// UpdateStatus applies a status transition.
func (s *orderService) UpdateStatus(ctx context.Context, change *model.StatusChange) (*model.OrderResponse, error) {
	if change == nil {
		return nil, model.NewValidationError("status", "is required")
	}

	return s.mutate(ctx, change.OrderNumber, change.Actor, change.ExpectedVersion, events.TypeStatusChanged,
		func(order *model.Order, at time.Time) error {
			return order.ApplyStatus(change.Status, change.Note, change.Actor, at)
		})
}

// AddTracking records a tracking number and marks the order shipped.
func (s *orderService) AddTracking(ctx context.Context, update *model.TrackingUpdate) (*model.OrderResponse, error) {
	if update == nil {
		return nil, model.NewValidationError("trackingNumber", "is required")
	}

	return s.mutate(ctx, update.OrderNumber, update.Actor, update.ExpectedVersion, events.TypeOrderShipped,
		func(order *model.Order, at time.Time) error {
			return order.ApplyTracking(update.TrackingNumber, update.EstimatedDelivery, update.Actor, at)
		})
}

// CancelOrder cancels an order that has not started processing.
func (s *orderService) CancelOrder(ctx context.Context, change *model.StatusChange) (*model.OrderResponse, error) {
	if change == nil {
		change = &model.StatusChange{}
	}

	cancel := *change
	cancel.Status = model.StatusCancelled
	return s.UpdateStatus(ctx, &cancel)
}

// mutate runs the load, mutate, save cycle. A stale save surfaces as
// ErrConcurrencyConflict; the caller decides whether to retry.
func (s *orderService) mutate(
	ctx context.Context,
	orderNumber, actor string,
	expectedVersion *int,
	eventType events.Type,
	apply func(order *model.Order, at time.Time) error,
) (*model.OrderResponse, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, model.NewValidationError("updatedBy", "an actor is required for order changes")
	}

	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to load order")
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if expectedVersion != nil && *expectedVersion != order.Version {
		s.metrics.ConcurrencyConflict()
		s.logger.Info().
			Str("order_number", orderNumber).
			Int("expected_version", *expectedVersion).
			Int("current_version", order.Version).
			Msg("order version mismatch")
		return nil, model.ErrConcurrencyConflict
	}

	previous := order.Status
	at := s.now().UTC()
	if err := apply(order, at); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_number", orderNumber).
			Str("status", string(previous)).
			Msg("order change rejected")
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if errors.Is(err, model.ErrConcurrencyConflict) {
			s.metrics.ConcurrencyConflict()
		}
		return nil, err
	}

	s.metrics.StatusTransition(string(order.Status))
	s.logger.Info().
		Str("order_number", orderNumber).
		Str("from", string(previous)).
		Str("to", string(order.Status)).
		Str("actor", actor).
		Int("version", order.Version).
		Msg("order status changed")

	s.publish(ctx, events.NewOrderEvent(eventType, order, actor, at))

	return model.NewOrderResponse(order), nil
}

// publish never fails the caller; the order change is already committed.
func (s *orderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.metrics.EventFailed()
		s.logger.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("order_number", event.OrderNumber).
			Msg("failed to publish order event")
	}
}
