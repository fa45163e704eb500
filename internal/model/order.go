package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is fixed at checkout.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPayPal         PaymentMethod = "paypal"
)

// ShippingMethod is fixed at checkout.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPickup   ShippingMethod = "pickup"
)

// Language of the storefront the order was placed from.
type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
	LanguageAR Language = "ar"
)

// Currencies accepted on orders.
const (
	CurrencyMAD = "MAD"
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"

	DefaultCurrency = CurrencyMAD
	DefaultCountry  = "Morocco"
)

// Address is the delivery address. Every field except Country is PII.
type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country" validate:"required"`
}

// Customer holds contact details. Email stays in cleartext as a lookup key;
// the rest is encrypted by the repository before it reaches storage.
type Customer struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone" validate:"required"`
	Address   Address `json:"address"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// LocalizedText carries a catalog label in every storefront language.
type LocalizedText struct {
	EN string `json:"en,omitempty"`
	FR string `json:"fr,omitempty"`
	AR string `json:"ar,omitempty"`
}

// ProductSnapshot is the catalog view of a product frozen at order time.
type ProductSnapshot struct {
	Name     LocalizedText `json:"name"`
	SKU      string        `json:"sku,omitempty"`
	Image    string        `json:"image,omitempty"`
	Category string        `json:"category,omitempty"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductRef      string          `json:"productRef" validate:"required"`
	ProductSnapshot ProductSnapshot `json:"productSnapshot"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Currency        string          `json:"currency" validate:"oneof=MAD EUR USD"`
}

// Totals are derived from the items and the tax/shipping/discount components.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// Notes are free-form remarks from the customer and back office.
type Notes struct {
	Customer string `json:"customer,omitempty"`
	Admin    string `json:"admin,omitempty"`
}

// StatusEntry is one append-only audit record.
type StatusEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Order represents a customer purchase.
type Order struct {
	ID                uuid.UUID      `json:"id"`
	OrderNumber       string         `json:"orderNumber"`
	Customer          Customer       `json:"customer"`
	Items             []OrderItem    `json:"items" validate:"min=1,dive"`
	Totals            Totals         `json:"totals"`
	Status            Status         `json:"status"`
	PaymentStatus     PaymentStatus  `json:"paymentStatus"`
	PaymentMethod     PaymentMethod  `json:"paymentMethod" validate:"oneof=cash_on_delivery bank_transfer credit_card paypal"`
	ShippingMethod    ShippingMethod `json:"shippingMethod" validate:"oneof=standard express pickup"`
	TrackingNumber    string         `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time     `json:"actualDelivery,omitempty"`
	Notes             Notes          `json:"notes"`
	Language          Language       `json:"language" validate:"oneof=en fr ar"`
	StatusHistory     []StatusEntry  `json:"statusHistory"`
	ConsentGiven      bool           `json:"consentGiven"`
	ConsentDate       time.Time      `json:"consentDate"`
	IPAddress         string         `json:"ipAddress" validate:"required,ip"`
	UserAgent         string         `json:"userAgent,omitempty"`
	Version           int            `json:"version"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`

	// DecryptionFailures lists the PII fields that could not be decrypted on
	// read and are therefore holding their raw stored token.
	DecryptionFailures []string `json:"decryptionFailures,omitempty"`
}

// CanCancel reports whether the order may still move to cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// IsDelivered reports whether the order reached the customer.
func (o *Order) IsDelivered() bool {
	return o.Status == StatusDelivered
}

// IsPaid reports whether payment has settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

// ItemCount is the number of units across all lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OrderItemRequest represents a single line in a checkout payload.
type OrderItemRequest struct {
	ProductRef      string              `json:"productRef"`
	ProductSnapshot ProductSnapshot     `json:"productSnapshot"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.Decimal     `json:"unitPrice"`
	TotalPrice      decimal.NullDecimal `json:"totalPrice"`
	Currency        string              `json:"currency,omitempty"`
}

// OrderRequest represents the checkout payload for creating an order.
type OrderRequest struct {
	Customer       Customer           `json:"customer"`
	Items          []OrderItemRequest `json:"items"`
	Tax            decimal.Decimal    `json:"tax"`
	Shipping       decimal.Decimal    `json:"shipping"`
	Discount       decimal.Decimal    `json:"discount"`
	PaymentMethod  PaymentMethod      `json:"paymentMethod,omitempty"`
	ShippingMethod ShippingMethod     `json:"shippingMethod,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Language       Language           `json:"language,omitempty"`
	ConsentGiven   bool               `json:"consentGiven"`
	IPAddress      string             `json:"ipAddress"`
	UserAgent      string             `json:"userAgent,omitempty"`
}

// StatusChange is a request to move an order to a new status.
type StatusChange struct {
	OrderNumber     string `json:"-"`
	Status          Status `json:"status"`
	Note            string `json:"note,omitempty"`
	Actor           string `json:"-"`
	ExpectedVersion *int   `json:"expectedVersion,omitempty"`
}

// TrackingUpdate ships an order with a carrier tracking number.
type TrackingUpdate struct {
	OrderNumber       string     `json:"-"`
	TrackingNumber    string     `json:"trackingNumber"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Actor             string     `json:"-"`
	ExpectedVersion   *int       `json:"expectedVersion,omitempty"`
}

// CustomerResponse adds derived fields to Customer.
type CustomerResponse struct {
	Customer
	FullName string `json:"fullName"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Customer    CustomerResponse `json:"customer"`
	IsDelivered bool             `json:"isDelivered"`
	IsPaid      bool             `json:"isPaid"`
	CanCancel   bool             `json:"canCancel"`
	ItemCount   int              `json:"itemCount"`
}

// NewOrderResponse builds the API view of an order.
func NewOrderResponse(o *Order) *OrderResponse {
	return &OrderResponse{
		Order:       *o,
		Customer:    CustomerResponse{Customer: o.Customer, FullName: o.Customer.FullName()},
		IsDelivered: o.IsDelivered(),
		IsPaid:      o.IsPaid(),
		CanCancel:   o.CanCancel(),
		ItemCount:   o.ItemCount(),
	}
}
