package repository

import (
	"context"
	"testing"
	"time"

	"order-service/internal/database"
	"order-service/internal/fieldcrypt"
	"order-service/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testSecret = []byte("repository-test-secret-0123456789")

// setupTestDB starts PostgreSQL in a container and applies the orders schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func newTestCipher(t *testing.T) fieldcrypt.Cipher {
	t.Helper()
	c, err := fieldcrypt.NewCipher(testSecret)
	require.NoError(t, err)
	return c
}

// newTestOrder builds a valid pending order with fake customer data.
func newTestOrder(t *testing.T, email string, createdAt time.Time, items ...model.OrderItemRequest) *model.Order {
	t.Helper()

	if len(items) == 0 {
		items = []model.OrderItemRequest{testItem("P001", 2, "100")}
	}

	order, err := model.NewOrder(&model.OrderRequest{
		Customer: model.Customer{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     email,
			Phone:     gofakeit.Phone(),
			Address: model.Address{
				Street:     gofakeit.Street(),
				City:       gofakeit.City(),
				PostalCode: gofakeit.Zip(),
			},
		},
		Items:        items,
		Tax:          decimal.RequireFromString("10"),
		Shipping:     decimal.RequireFromString("20"),
		Discount:     decimal.RequireFromString("5"),
		ConsentGiven: true,
		IPAddress:    gofakeit.IPv4Address(),
	}, createdAt)
	require.NoError(t, err)

	return order
}

func testItem(ref string, qty int, unit string) model.OrderItemRequest {
	return model.OrderItemRequest{
		ProductRef: ref,
		ProductSnapshot: model.ProductSnapshot{
			Name: model.LocalizedText{EN: "Product " + ref, FR: "Produit " + ref},
			SKU:  "SKU-" + ref,
		},
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(unit),
	}
}
