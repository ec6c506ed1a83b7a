// Package checkout places orders, handing UPI payments to a payment widget.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookify-dev/bookify/internal/cli/client"
)

// ErrPaymentNotVerified is returned when the backend rejects the widget's payment signature
var ErrPaymentNotVerified = errors.New("razorpay payment verification failed")

// ErrUnknownOrderMode is returned for modes other than CASH and UPI
var ErrUnknownOrderMode = errors.New("unknown order mode")

const (
	merchantName       = "Bookify"
	paymentDescription = "Book Order Payment"
	defaultCurrency    = "INR"
)

// Prefill is shown in the widget's contact form
type Prefill struct {
	Name    string
	Contact string
}

// Options are handed to the payment widget. Amount is in the smallest
// currency unit, as issued by the gateway.
type Options struct {
	Key         string
	Amount      int64
	Currency    string
	Name        string
	Description string
	OrderID     string
	Prefill     Prefill
}

// Result is what the widget reports on a completed payment
type Result struct {
	PaymentData client.PaymentData
}

// Widget collects a payment from the user. It returns an error when the user
// abandons the payment.
type Widget interface {
	Open(ctx context.Context, opts Options) (Result, error)
}

// API is the subset of the backend client checkout needs
type API interface {
	PlaceOrder(ctx context.Context, order client.Order) (*client.Order, error)
	PaymentKey(ctx context.Context) (string, error)
	CreateGatewayOrder(ctx context.Context, amount float64) (*client.GatewayOrder, error)
	VerifyPayment(ctx context.Context, data client.PaymentData) (bool, error)
	PlacePaidOrder(ctx context.Context, order client.Order, data client.PaymentData) (*client.Order, error)
}

// Checkout places orders through api, using widget for UPI payments
type Checkout struct {
	api    API
	widget Widget
	logger zerolog.Logger
}

// New creates a Checkout
func New(api API, widget Widget, logger zerolog.Logger) *Checkout {
	return &Checkout{api: api, widget: widget, logger: logger}
}

// Place places order. grandTotal is the amount charged for UPI orders,
// in rupees including GST.
func (c *Checkout) Place(ctx context.Context, order client.Order, grandTotal float64) (*client.Order, error) {
	switch order.OrderMode {
	case client.OrderModeCash:
		placed, err := c.api.PlaceOrder(ctx, order)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		return placed, nil
	case client.OrderModeUPI:
		return c.placeUPI(ctx, order, grandTotal)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrderMode, order.OrderMode)
	}
}

func (c *Checkout) placeUPI(ctx context.Context, order client.Order, grandTotal float64) (*client.Order, error) {
	key, err := c.api.PaymentKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment key: %w", err)
	}

	gwOrder, err := c.api.CreateGatewayOrder(ctx, grandTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	currency := gwOrder.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	opts := Options{
		Key:         key,
		Amount:      gwOrder.Amount,
		Currency:    currency,
		Name:        merchantName,
		Description: paymentDescription,
		OrderID:     gwOrder.ID,
		Prefill: Prefill{
			Name:    order.UserName,
			Contact: order.PhoneNumber,
		},
	}

	result, err := c.widget.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("payment not completed: %w", err)
	}

	verified, err := c.api.VerifyPayment(ctx, result.PaymentData)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !verified {
		c.logger.Warn().Str("gateway_order", gwOrder.ID).Msg("payment signature rejected")
		return nil, ErrPaymentNotVerified
	}

	placed, err := c.api.PlacePaidOrder(ctx, order, result.PaymentData)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return placed, nil
}
