package present

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bookify-dev/bookify/internal/cli/client"
)

// GSTRate is the tax applied on top of the cart subtotal
const GSTRate = 0.05

// CartTotals are the amounts shown under a cart
type CartTotals struct {
	Subtotal   float64
	GST        float64
	GrandTotal float64
}

// Totals computes cart totals. Items with no quantity count once.
func Totals(items []client.CartItem) CartTotals {
	var subtotal float64
	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal += it.Book.Price * float64(qty)
	}
	gst := subtotal * GSTRate
	return CartTotals{Subtotal: subtotal, GST: gst, GrandTotal: subtotal + gst}
}

// SplitGST splits a GST-inclusive grand total into subtotal and tax
func SplitGST(grandTotal float64) CartTotals {
	subtotal := grandTotal / (1 + GSTRate)
	return CartTotals{Subtotal: subtotal, GST: grandTotal - subtotal, GrandTotal: grandTotal}
}

// Rupees formats an amount with two decimals
func Rupees(amount float64) string {
	return fmt.Sprintf("₹%.2f", math.Round(amount*100)/100)
}

// Batch is the set of orders placed in one checkout. The backend creates one
// order per cart line, all sharing a creation timestamp.
type Batch struct {
	PlacedAt time.Time
	Orders   []client.Order
}

// Total sums the totals of every order in the batch
func (b Batch) Total() float64 {
	var total float64
	for _, o := range b.Orders {
		total += o.Total
	}
	return total
}

// Head is the order whose delivery details represent the batch
func (b Batch) Head() client.Order {
	return b.Orders[0]
}

// GroupOrders sorts orders newest first and groups those sharing a creation
// time (to the second) into batches
func GroupOrders(orders []client.Order) []Batch {
	sorted := make([]client.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	var batches []Batch
	index := make(map[time.Time]int)
	for _, o := range sorted {
		key := o.CreatedAt.Truncate(time.Second)
		if i, ok := index[key]; ok {
			batches[i].Orders = append(batches[i].Orders, o)
			continue
		}
		index[key] = len(batches)
		batches = append(batches, Batch{PlacedAt: key, Orders: []client.Order{o}})
	}
	return batches
}

// Action is something a user may try on an order
type Action int

const (
	ActionEdit Action = iota
	ActionCancel
	ActionRemoveItem
	ActionReview
	ActionInvoice
)

// Permit reports whether action is allowed on order and, when it is not, the
// message shown to the user
func Permit(action Action, order client.Order) (bool, string) {
	status := order.OrderStatus
	final := status == StatusDelivered || status == StatusCancelled

	switch action {
	case ActionEdit:
		if final {
			return false, "You cannot edit this order."
		}
	case ActionCancel:
		if order.OrderMode == client.OrderModeUPI {
			return false, "You cannot cancel orders placed via UPI."
		}
		if status == StatusDelivered {
			return false, "You cannot delete a delivered order."
		}
	case ActionRemoveItem:
		if order.OrderMode == client.OrderModeUPI {
			return false, "You cannot cancel products from a UPI order."
		}
		if final {
			return false, fmt.Sprintf("This action is not allowed because the order is %s.", strings.ToLower(status))
		}
	case ActionReview:
		if status != StatusDelivered {
			return false, "Review & Rating is allowed only for delivered products."
		}
	case ActionInvoice:
		if status != StatusDelivered {
			return false, "Printing is allowed only for delivered orders."
		}
	}
	return true, ""
}

// InvoiceNumber numbers the batchIndex-th batch (zero-based) of year
func InvoiceNumber(year, batchIndex int) string {
	return fmt.Sprintf("INV-%d-%04d", year, batchIndex+1)
}
