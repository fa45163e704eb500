//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"order-service/internal/config"
	"order-service/internal/database"
	"order-service/internal/events"
	"order-service/internal/fieldcrypt"
	"order-service/internal/metrics"
	"order-service/internal/model"
	"order-service/internal/repository"
	"order-service/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

var catalog = []struct {
	ref   string
	name  model.LocalizedText
	price string
}{
	{"P001", model.LocalizedText{EN: "Argan oil 100ml", FR: "Huile d'argan 100ml", AR: "زيت الأركان"}, "120.00"},
	{"P002", model.LocalizedText{EN: "Ceramic tagine", FR: "Tajine en céramique"}, "249.90"},
	{"P003", model.LocalizedText{EN: "Mint tea set", FR: "Service à thé"}, "189.00"},
	{"P004", model.LocalizedText{EN: "Leather babouches", FR: "Babouches en cuir"}, "159.50"},
	{"P005", model.LocalizedText{EN: "Saffron 5g", FR: "Safran 5g"}, "75.00"},
}

var lifecycle = []model.Status{
	model.StatusPending, model.StatusConfirmed, model.StatusProcessing,
	model.StatusShipped, model.StatusDelivered,
}

// seed_orders inserts demo orders through the order service so that they are
// encrypted, numbered and audited exactly like real traffic.
//
//	go run scripts/seed_orders.go -n 200
func main() {
	n := flag.Int("n", 50, "number of orders to create")
	flag.Parse()

	if err := run(*n); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(n int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	secret, err := fieldcrypt.ResolveSecret(ctx, fieldcrypt.Source{
		Key:       cfg.Crypto.Key,
		KeyFile:   cfg.Crypto.KeyFile,
		S3Enabled: cfg.Crypto.S3Enabled,
		S3Bucket:  cfg.Crypto.S3Bucket,
		S3Region:  cfg.Crypto.S3Region,
		S3Key:     cfg.Crypto.S3Key,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to load encryption key: %w", err)
	}
	cipher, err := fieldcrypt.NewCipher(secret)
	if err != nil {
		return err
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	orders := service.NewOrderService(
		repository.NewOrderRepository(pool, cipher, logger),
		events.NewLoggingPublisher(logger),
		metrics.New(),
		logger,
	)

	for i := 0; i < n; i++ {
		created, err := orders.CreateOrder(ctx, fakeRequest())
		if err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}

		if err := advance(ctx, orders, created.OrderNumber); err != nil {
			return fmt.Errorf("order %s: %w", created.OrderNumber, err)
		}
	}

	fmt.Printf("Seeded %d orders\n", n)
	return nil
}

// advance walks an order some way through its lifecycle; roughly one in ten
// is cancelled instead.
func advance(ctx context.Context, orders service.OrderService, orderNumber string) error {
	if rand.IntN(10) == 0 {
		_, err := orders.CancelOrder(ctx, &model.StatusChange{OrderNumber: orderNumber, Note: "customer request", Actor: "seed"})
		return err
	}

	target := rand.IntN(len(lifecycle))
	for _, status := range lifecycle[1 : target+1] {
		var err error
		if status == model.StatusShipped {
			_, err = orders.AddTracking(ctx, &model.TrackingUpdate{
				OrderNumber:    orderNumber,
				TrackingNumber: gofakeit.Regex(`[A-Z]{2}[0-9]{9}MA`),
				Actor:          "seed",
			})
		} else {
			_, err = orders.UpdateStatus(ctx, &model.StatusChange{OrderNumber: orderNumber, Status: status, Actor: "seed"})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func fakeRequest() *model.OrderRequest {
	lines := 1 + rand.IntN(3)
	picked := rand.Perm(len(catalog))[:lines]

	items := make([]model.OrderItemRequest, 0, lines)
	for _, idx := range picked {
		p := catalog[idx]
		items = append(items, model.OrderItemRequest{
			ProductRef:      p.ref,
			ProductSnapshot: model.ProductSnapshot{Name: p.name, SKU: "SKU-" + p.ref},
			Quantity:        1 + rand.IntN(4),
			UnitPrice:       decimal.RequireFromString(p.price),
		})
	}

	languages := []model.Language{model.LanguageEN, model.LanguageFR, model.LanguageAR}
	methods := []model.PaymentMethod{model.PaymentCashOnDelivery, model.PaymentCreditCard, model.PaymentBankTransfer}

	return &model.OrderRequest{
		Customer: model.Customer{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Phone:     gofakeit.Phone(),
			Address: model.Address{
				Street:     gofakeit.Street(),
				City:       gofakeit.City(),
				PostalCode: gofakeit.Zip(),
			},
		},
		Items:         items,
		Tax:           decimal.Zero,
		Shipping:      decimal.RequireFromString("30"),
		PaymentMethod: methods[rand.IntN(len(methods))],
		Language:      languages[rand.IntN(len(languages))],
		ConsentGiven:  true,
		IPAddress:     gofakeit.IPv4Address(),
		UserAgent:     gofakeit.UserAgent(),
	}
}
