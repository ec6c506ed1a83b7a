package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/cli/client"
)

type fakeAPI struct {
	calls    []string
	verified bool
	key      string
	amount   float64
	paidWith client.PaymentData
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, order client.Order) (*client.Order, error) {
	f.calls = append(f.calls, "place")
	order.ID = 1
	return &order, nil
}

func (f *fakeAPI) PaymentKey(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "key")
	return f.key, nil
}

func (f *fakeAPI) CreateGatewayOrder(ctx context.Context, amount float64) (*client.GatewayOrder, error) {
	f.calls = append(f.calls, "create")
	f.amount = amount
	return &client.GatewayOrder{ID: "order_gw", Amount: int64(amount * 100), Currency: "INR"}, nil
}

func (f *fakeAPI) VerifyPayment(ctx context.Context, data client.PaymentData) (bool, error) {
	f.calls = append(f.calls, "verify")
	return f.verified, nil
}

func (f *fakeAPI) PlacePaidOrder(ctx context.Context, order client.Order, data client.PaymentData) (*client.Order, error) {
	f.calls = append(f.calls, "place-paid")
	f.paidWith = data
	order.ID = 2
	return &order, nil
}

type fakeWidget struct {
	opts Options
	err  error
}

func (w *fakeWidget) Open(ctx context.Context, opts Options) (Result, error) {
	w.opts = opts
	if w.err != nil {
		return Result{}, w.err
	}
	return Result{PaymentData: client.PaymentData{OrderID: opts.OrderID, PaymentID: "pay_1", Signature: "sig"}}, nil
}

func upiOrder() client.Order {
	return client.Order{
		UserName:    "Ada",
		Address:     "1 Loop Street",
		PhoneNumber: "9999999999",
		OrderMode:   client.OrderModeUPI,
		User:        &client.UserRef{ID: 3},
		Items:       []client.OrderItem{{BookID: 5, Quantity: 2}},
	}
}

func TestPlace_Cash(t *testing.T) {
	api := &fakeAPI{}
	w := &fakeWidget{}
	order := upiOrder()
	order.OrderMode = client.OrderModeCash

	placed, err := New(api, w, zerolog.Nop()).Place(context.Background(), order, 210)
	require.NoError(t, err)
	assert.Equal(t, int64(1), placed.ID)
	assert.Equal(t, []string{"place"}, api.calls)
	assert.Empty(t, w.opts.Key, "widget must not open for cash orders")
}

func TestPlace_UPIVerified(t *testing.T) {
	api := &fakeAPI{verified: true, key: "rzp_test"}
	w := &fakeWidget{}

	placed, err := New(api, w, zerolog.Nop()).Place(context.Background(), upiOrder(), 525)
	require.NoError(t, err)
	assert.Equal(t, int64(2), placed.ID)
	assert.Equal(t, []string{"key", "create", "verify", "place-paid"}, api.calls)
	assert.Equal(t, 525.0, api.amount)

	assert.Equal(t, Options{
		Key:         "rzp_test",
		Amount:      52500,
		Currency:    "INR",
		Name:        "Bookify",
		Description: "Book Order Payment",
		OrderID:     "order_gw",
		Prefill:     Prefill{Name: "Ada", Contact: "9999999999"},
	}, w.opts)
	assert.Equal(t, "pay_1", api.paidWith.PaymentID)
}

func TestPlace_UPINotVerified(t *testing.T) {
	api := &fakeAPI{verified: false}

	_, err := New(api, &fakeWidget{}, zerolog.Nop()).Place(context.Background(), upiOrder(), 100)
	require.ErrorIs(t, err, ErrPaymentNotVerified)
	assert.Equal(t, []string{"key", "create", "verify"}, api.calls)
}

func TestPlace_UPIWidgetDismissed(t *testing.T) {
	api := &fakeAPI{verified: true}
	dismissed := errors.New("dismissed")

	_, err := New(api, &fakeWidget{err: dismissed}, zerolog.Nop()).Place(context.Background(), upiOrder(), 100)
	require.ErrorIs(t, err, dismissed)
	assert.Equal(t, []string{"key", "create"}, api.calls)
}

func TestPlace_UnknownMode(t *testing.T) {
	order := upiOrder()
	order.OrderMode = "CARD"

	_, err := New(&fakeAPI{}, &fakeWidget{}, zerolog.Nop()).Place(context.Background(), order, 100)
	require.ErrorIs(t, err, ErrUnknownOrderMode)
}
