package service

import (
	"context"
	"sync"

	"order-service/internal/events"
	"order-service/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomerEmail(ctx context.Context, email string, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, email, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository.
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Summary(ctx context.Context, window model.Window) (*model.Summary, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

func (m *MockAnalyticsRepository) TopProducts(ctx context.Context, window model.Window, limit int) ([]model.ProductStat, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductStat), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) Key(operation string, parts ...string) string {
	key := operation
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// countingRecorder records metric calls.
type countingRecorder struct {
	mu          sync.Mutex
	created     int
	transitions map[string]int
	conflicts   int
	eventsFail  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{transitions: map[string]int{}}
}

func (r *countingRecorder) OrderCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) StatusTransition(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[status]++
}

func (r *countingRecorder) ConcurrencyConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *countingRecorder) EventFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventsFail++
}

// memoryOrderRepository is a versioned in-memory store. Update compares and
// swaps under a mutex, the same contract the PostgreSQL repository enforces
// with its version column.
type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]model.Order
}

func newMemoryOrderRepository(orders ...*model.Order) *memoryOrderRepository {
	r := &memoryOrderRepository{orders: map[string]model.Order{}}
	for _, o := range orders {
		r.orders[o.OrderNumber] = cloneOrder(o)
	}
	return r
}

func cloneOrder(o *model.Order) model.Order {
	c := *o
	c.StatusHistory = append([]model.StatusEntry(nil), o.StatusHistory...)
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return c
}

func (r *memoryOrderRepository) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.Version = 1
	r.orders[order.OrderNumber] = cloneOrder(order)
	return nil
}

func (r *memoryOrderRepository) GetByOrderNumber(_ context.Context, orderNumber string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	o := cloneOrder(&stored)
	return &o, nil
}

func (r *memoryOrderRepository) ListByCustomerEmail(context.Context, string, int, int) ([]model.Order, error) {
	return nil, nil
}

func (r *memoryOrderRepository) Update(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.OrderNumber]
	if !ok {
		return model.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return model.ErrConcurrencyConflict
	}
	order.Version++
	r.orders[order.OrderNumber] = cloneOrder(order)
	return nil
}
