package present

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/cli/client"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		page, total int
		start, end  int
	}{
		{0, 0, 0, 0},
		{0, 3, 0, 3},
		{0, 10, 0, 5},
		{2, 10, 0, 5},
		{5, 10, 3, 8},
		{9, 10, 5, 10},
		{8, 10, 5, 10},
	}
	for _, tt := range tests {
		start, end := PageWindow(tt.page, tt.total)
		assert.Equal(t, tt.start, start, "page %d of %d", tt.page, tt.total)
		assert.Equal(t, tt.end, end, "page %d of %d", tt.page, tt.total)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 0, ClampPage(-1, 5))
	assert.Equal(t, 4, ClampPage(9, 5))
	assert.Equal(t, 0, ClampPage(3, 0))
}

func TestNextOrderStatuses(t *testing.T) {
	assert.Equal(t, []string{"Placed", "Processing", "Shipped", "Out for Delivery", "Delivered", "Cancelled"}, NextOrderStatuses("Placed"))
	assert.Equal(t, []string{"Out for Delivery", "Delivered", "Cancelled"}, NextOrderStatuses("Out for Delivery"))
	assert.Equal(t, []string{"Delivered"}, NextOrderStatuses("Delivered"))
	assert.Equal(t, []string{"Cancelled"}, NextOrderStatuses("Cancelled"))
	assert.Empty(t, NextOrderStatuses("Lost"))

	// the shared table is not modified by callers appending
	_ = append(NextOrderStatuses("Placed"), "x")
	assert.Equal(t, "Cancelled", OrderStatuses[len(OrderStatuses)-1])
}

func TestStatusTones(t *testing.T) {
	assert.Equal(t, ToneSuccess, ReturnStatusTone("approved"))
	assert.Equal(t, ToneSecondary, ReturnStatusTone("PENDING"))
	assert.Equal(t, ToneLight, ReturnStatusTone("???"))
	assert.Equal(t, ToneDanger, OrderStatusTone(StatusCancelled))
	assert.Equal(t, "Placed", Badge("Placed", ToneSecondary, true))
	assert.NotEqual(t, "Placed", Badge("Placed", ToneSecondary, false))
}

func TestTotals(t *testing.T) {
	items := []client.CartItem{
		{Book: client.Book{Price: 100}, Quantity: 2},
		{Book: client.Book{Price: 50}},
	}
	totals := Totals(items)
	assert.InDelta(t, 250, totals.Subtotal, 0.001)
	assert.InDelta(t, 12.5, totals.GST, 0.001)
	assert.InDelta(t, 262.5, totals.GrandTotal, 0.001)

	split := SplitGST(262.5)
	assert.InDelta(t, 250, split.Subtotal, 0.001)
	assert.InDelta(t, 12.5, split.GST, 0.001)

	assert.Equal(t, "₹262.50", Rupees(262.5))
}

func at(s string) client.DateTime {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return client.DateTime{Time: t}
}

func TestGroupOrders(t *testing.T) {
	orders := []client.Order{
		{ID: 1, Total: 100, CreatedAt: at("2025-09-01T10:00:00Z")},
		{ID: 2, Total: 50, CreatedAt: at("2025-09-02T09:00:00Z")},
		{ID: 3, Total: 20, CreatedAt: at("2025-09-01T10:00:00Z")},
	}

	batches := GroupOrders(orders)
	require.Len(t, batches, 2)
	assert.Equal(t, int64(2), batches[0].Head().ID)
	require.Len(t, batches[1].Orders, 2)
	assert.InDelta(t, 120, batches[1].Total(), 0.001)

	// input order untouched
	assert.Equal(t, int64(1), orders[0].ID)
}

func TestPermit(t *testing.T) {
	cashPlaced := client.Order{OrderMode: client.OrderModeCash, OrderStatus: StatusPlaced}
	upiPlaced := client.Order{OrderMode: client.OrderModeUPI, OrderStatus: StatusPlaced}
	delivered := client.Order{OrderMode: client.OrderModeCash, OrderStatus: StatusDelivered}
	cancelled := client.Order{OrderMode: client.OrderModeCash, OrderStatus: StatusCancelled}

	ok, _ := Permit(ActionEdit, cashPlaced)
	assert.True(t, ok)
	ok, msg := Permit(ActionEdit, delivered)
	assert.False(t, ok)
	assert.Equal(t, "You cannot edit this order.", msg)

	ok, msg = Permit(ActionCancel, upiPlaced)
	assert.False(t, ok)
	assert.Equal(t, "You cannot cancel orders placed via UPI.", msg)

	ok, msg = Permit(ActionRemoveItem, cancelled)
	assert.False(t, ok)
	assert.Equal(t, "This action is not allowed because the order is cancelled.", msg)

	ok, _ = Permit(ActionReview, delivered)
	assert.True(t, ok)
	ok, _ = Permit(ActionInvoice, cashPlaced)
	assert.False(t, ok)
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-0003", InvoiceNumber(2025, 2))
}
