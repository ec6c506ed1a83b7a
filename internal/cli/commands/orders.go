package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewOrdersCmd creates the orders command
func NewOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.myOrders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				app.println("You have not placed any orders.")
				return nil
			}

			for i, batch := range present.GroupOrders(orders) {
				if i > 0 {
					app.println()
				}
				app.printf("Placed %s  (%d order(s), %s)\n", batch.PlacedAt.Format("2006-01-02 15:04"), len(batch.Orders), present.Rupees(batch.Total()))
				for _, o := range batch.Orders {
					app.printOrder(o)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(
		newOrdersEditCmd(app),
		newOrdersCancelCmd(app),
		newOrdersRemoveItemCmd(app),
		newOrdersReviewCmd(app),
		newOrdersInvoiceCmd(app),
		newOrdersPaymentCmd(app),
	)
	for _, sub := range cmd.Commands() {
		withRoute(sub, guard.RouteOrder)
	}
	return withRoute(cmd, guard.RouteOrder)
}

func (a *App) myOrders(ctx context.Context) ([]client.Order, error) {
	userID, err := a.userID(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := a.Client.ListOrders(ctx, userID)
	if err != nil {
		return nil, apiError(err, "Failed to load orders")
	}
	return orders, nil
}

// findOrder looks the order up among the caller's own orders
func (a *App) findOrder(ctx context.Context, arg string) (client.Order, error) {
	id, err := parseID(arg, "order")
	if err != nil {
		return client.Order{}, err
	}
	orders, err := a.myOrders(ctx)
	if err != nil {
		return client.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return client.Order{}, fmt.Errorf("order #%d not found", id)
}

// permit checks action against order, turning a refusal into an error
func permit(action present.Action, order client.Order) error {
	if ok, msg := present.Permit(action, order); !ok {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func newOrdersEditCmd(app *App) *cobra.Command {
	var name, address, phone, delivery string

	cmd := &cobra.Command{
		Use:   "edit <order-id>",
		Short: "Change delivery details of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			order, err := app.findOrder(ctx, args[0])
			if err != nil {
				return err
			}
			if err := permit(present.ActionEdit, order); err != nil {
				return err
			}

			form := forms.OrderEdit{
				UserName:     order.UserName,
				Address:      order.Address,
				PhoneNumber:  order.PhoneNumber,
				DeliveryDate: order.DeliveryDate.Time,
				CreatedAt:    order.CreatedAt.Time,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.UserName = name
			}
			if flags.Changed("address") {
				form.Address = address
			}
			if flags.Changed("phone") {
				form.PhoneNumber = phone
			}
			if flags.Changed("delivery-date") {
				d, err := time.ParseInLocation(time.DateOnly, delivery, time.Local)
				if err != nil {
					return fmt.Errorf("delivery date must look like 2025-09-30")
				}
				form.DeliveryDate = d
			}
			if err := forms.Validate(form); err != nil {
				return err
			}

			updated, err := app.Client.EditOrder(ctx, order.ID, client.OrderUpdate{
				UserName:     form.UserName,
				Address:      form.Address,
				PhoneNumber:  form.PhoneNumber,
				DeliveryDate: form.DeliveryDate.Format(time.DateOnly),
			})
			if err != nil {
				return apiError(err, "Failed to update order")
			}
			app.println("Order updated.")
			app.printOrder(*updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Recipient name")
	cmd.Flags().StringVar(&address, "address", "", "Delivery address")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact number")
	cmd.Flags().StringVar(&delivery, "delivery-date", "", "Delivery date (YYYY-MM-DD, within 10 days of ordering)")
	return cmd
}

func newOrdersCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a whole order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := app.findOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := permit(present.ActionCancel, order); err != nil {
				return err
			}
			msg, err := app.Client.RemoveOrder(cmd.Context(), order.ID)
			if err != nil {
				return apiError(err, "Failed to cancel order")
			}
			app.println(msg)
			return nil
		},
	}
}

func newOrdersRemoveItemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <order-id> <book-id>",
		Short: "Cancel one book of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := app.findOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			bookID, err := parseID(args[1], "book")
			if err != nil {
				return err
			}
			if err := permit(present.ActionRemoveItem, order); err != nil {
				return err
			}
			msg, err := app.Client.RemoveOrderItem(cmd.Context(), order.ID, bookID)
			if err != nil {
				return apiError(err, "Failed to remove item")
			}
			app.println(msg)
			return nil
		},
	}
}

func newOrdersReviewCmd(app *App) *cobra.Command {
	var in client.ReviewInput

	cmd := &cobra.Command{
		Use:   "review <order-id> <book-id>",
		Short: "Rate a delivered book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := app.findOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			bookID, err := parseID(args[1], "book")
			if err != nil {
				return err
			}
			if err := permit(present.ActionReview, order); err != nil {
				return err
			}
			if err := forms.Validate(forms.Review{Rating: in.Rating, Review: in.Review}); err != nil {
				return err
			}

			item, err := app.Client.AddReview(cmd.Context(), order.ID, bookID, in)
			if err != nil {
				return apiError(err, "Failed to save review")
			}
			app.printf("Thanks for reviewing %s.\n", item.BookName)
			return nil
		},
	}

	cmd.Flags().Float64Var(&in.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&in.Review, "review", "", "A few words about the book")
	return cmd
}

func newOrdersInvoiceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Print the invoice of a delivered order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orders, err := app.myOrders(ctx)
			if err != nil {
				return err
			}
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}

			number, found := invoiceNumber(orders, id)
			if !found {
				return fmt.Errorf("order #%d not found", id)
			}
			for _, o := range orders {
				if o.ID != id {
					continue
				}
				if err := permit(present.ActionInvoice, o); err != nil {
					return err
				}
			}

			order, err := app.Client.PrintOrder(ctx, id)
			if err != nil {
				return apiError(err, "Failed to load invoice")
			}
			app.printInvoice(number, *order)
			return nil
		},
	}
}

// invoiceNumber numbers the checkout batch holding orderID among the
// batches of the same year, oldest first
func invoiceNumber(orders []client.Order, orderID int64) (string, bool) {
	batches := present.GroupOrders(orders)
	counts := map[int]int{}
	for i := len(batches) - 1; i >= 0; i-- {
		year := batches[i].PlacedAt.Year()
		for _, o := range batches[i].Orders {
			if o.ID == orderID {
				return present.InvoiceNumber(year, counts[year]), true
			}
		}
		counts[year]++
	}
	return "", false
}

func (a *App) printInvoice(number string, o client.Order) {
	totals := present.SplitGST(o.Total)

	a.printf("Bookify Invoice %s\n", number)
	a.printf("Date:    %s\n", formatDate(o.DeliveryDate))
	a.printf("Bill to: %s, %s (%s)\n\n", o.UserName, o.Address, o.PhoneNumber)

	w := newTable(a.Out, "BOOK", "AUTHOR", "QTY", "PRICE", "AMOUNT")
	for _, it := range o.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", it.BookName, it.AuthorName, it.Quantity, present.Rupees(it.UnitPrice), present.Rupees(it.Subtotal))
	}
	w.Flush()

	a.printf("\nSubtotal: %s\n", present.Rupees(totals.Subtotal))
	a.printf("GST (5%%): %s\n", present.Rupees(totals.GST))
	a.printf("Total:    %s\n", present.Rupees(totals.GrandTotal))
	a.printf("Paid by:  %s\n", o.OrderMode)
}

func newOrdersPaymentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "payment <order-id>",
		Short: "Show the payment record of a UPI order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			info, err := app.Client.PaymentInfo(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load payment info")
			}
			app.printf("Gateway order: %s\n", info.RazorpayOrderID)
			app.printf("Payment:       %s\n", info.RazorpayPaymentID)
			return nil
		},
	}
}
