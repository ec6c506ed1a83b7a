package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/checkout"
	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewCheckoutCmd creates the checkout command
func NewCheckoutCmd(app *App) *cobra.Command {
	var form forms.Order
	var quantities map[string]int

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Order everything in your cart",
		Long: `Order everything in your cart.

CASH orders are placed directly. UPI orders open the payment widget first and
are only placed once the backend has verified the payment.

Examples:
  $ bookify checkout --name Asha --address "12 MG Road" --phone 9876543210
  $ bookify checkout --mode UPI --qty 3=2 --name Asha --address "12 MG Road" --phone 9876543210`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd.Context(), app, form, quantities)
		},
	}

	cmd.Flags().StringVar(&form.OrderMode, "mode", client.OrderModeCash, "Payment mode: CASH or UPI")
	cmd.Flags().StringVar(&form.UserName, "name", "", "Recipient name")
	cmd.Flags().StringVar(&form.Address, "address", "", "Delivery address")
	cmd.Flags().StringVar(&form.PhoneNumber, "phone", "", "Contact number")
	cmd.Flags().StringToIntVar(&quantities, "qty", nil, "Copies per book, as book-id=count (default 1)")

	return withRoute(cmd, guard.RouteOrder)
}

func runCheckout(ctx context.Context, app *App, form forms.Order, quantities map[string]int) error {
	form.OrderMode = strings.ToUpper(form.OrderMode)
	if err := forms.Validate(form); err != nil {
		return err
	}

	userID, err := app.userID(ctx)
	if err != nil {
		return err
	}
	cart, err := app.Client.GetCart(ctx, userID)
	if err != nil {
		return apiError(err, "Failed to load cart")
	}
	if len(cart) == 0 {
		return fmt.Errorf("your cart is empty, add books with 'bookify cart add <book-id>'")
	}

	items, err := applyQuantities(cart, quantities)
	if err != nil {
		return err
	}

	order := client.Order{
		UserName:    form.UserName,
		OrderMode:   form.OrderMode,
		Address:     form.Address,
		PhoneNumber: form.PhoneNumber,
		User:        &client.UserRef{ID: userID},
	}
	for _, it := range items {
		order.Items = append(order.Items, client.OrderItem{BookID: it.Book.ID, Quantity: it.Quantity})
	}

	totals := present.Totals(items)
	app.printf("Grand total: %s (incl. GST %s)\n", present.Rupees(totals.GrandTotal), present.Rupees(totals.GST))

	placed, err := checkout.New(app.Client, app.Widget, app.Logger).Place(ctx, order, totals.GrandTotal)
	if err != nil {
		if errors.Is(err, checkout.ErrPaymentNotVerified) {
			return fmt.Errorf("your order was not placed: %w", err)
		}
		return apiError(err, "Failed to place order")
	}

	app.println("✓ Order placed!")
	app.printOrder(*placed)
	return nil
}

// applyQuantities sets each cart line's quantity from the --qty flag
func applyQuantities(cart []client.CartItem, quantities map[string]int) ([]client.CartItem, error) {
	inCart := make(map[string]bool, len(cart))
	items := make([]client.CartItem, len(cart))
	for i, it := range cart {
		key := strconv.FormatInt(it.Book.ID, 10)
		inCart[key] = true

		it.Quantity = 1
		if q, ok := quantities[key]; ok {
			if q < 1 {
				return nil, fmt.Errorf("quantity for book #%s must be at least 1", key)
			}
			if q > it.Book.Quantity {
				return nil, fmt.Errorf("only %d copies of %s are in stock", it.Book.Quantity, it.Book.Name)
			}
			it.Quantity = q
		}
		items[i] = it
	}

	for key := range quantities {
		if !inCart[key] {
			return nil, fmt.Errorf("book #%s is not in your cart", key)
		}
	}
	return items, nil
}

// promptWidget is the terminal stand-in for the gateway's checkout popup.
// The payment itself happens elsewhere; the user types in what the gateway
// returned.
type promptWidget struct {
	out io.Writer
}

func (w *promptWidget) Open(ctx context.Context, opts checkout.Options) (checkout.Result, error) {
	fmt.Fprintf(w.out, "\n%s: %s\n", opts.Name, opts.Description)
	fmt.Fprintf(w.out, "  Amount:        %.2f %s\n", float64(opts.Amount)/100, opts.Currency)
	fmt.Fprintf(w.out, "  Gateway order: %s\n", opts.OrderID)
	fmt.Fprintf(w.out, "  Key:           %s\n", opts.Key)
	fmt.Fprintf(w.out, "  Payer:         %s (%s)\n\n", opts.Prefill.Name, opts.Prefill.Contact)

	confirm := promptui.Prompt{
		Label:     "Proceed with payment",
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		return checkout.Result{}, fmt.Errorf("payment cancelled: %w", err)
	}

	paymentID, err := (&promptui.Prompt{Label: "Payment ID", Validate: notBlank}).Run()
	if err != nil {
		return checkout.Result{}, fmt.Errorf("payment cancelled: %w", err)
	}
	signature, err := (&promptui.Prompt{Label: "Signature", Validate: notBlank}).Run()
	if err != nil {
		return checkout.Result{}, fmt.Errorf("payment cancelled: %w", err)
	}

	return checkout.Result{PaymentData: client.PaymentData{
		OrderID:   opts.OrderID,
		PaymentID: strings.TrimSpace(paymentID),
		Signature: strings.TrimSpace(signature),
	}}, nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}
