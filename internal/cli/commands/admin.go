package commands

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Store administration",
	}

	cmd.AddCommand(
		withRoute(newAdminOrdersCmd(app), guard.RouteAdminOrders),
		withRoute(newAdminStatusCmd(app), guard.RouteAdminOrders),
		withRoute(newAdminPaymentCmd(app), guard.RouteAdminOrders),
		withRoute(newAdminStatsCmd(app), guard.RouteAdminDashboard),
		withRoute(newAdminUsersCmd(app), guard.RouteInformation),
		withRoute(newAdminCartsCmd(app, false), guard.RouteInformation),
		withRoute(newAdminCartsCmd(app, true), guard.RouteInformation),
		withRoute(newAdminReturnsCmd(app), guard.RouteAdminOrders),
		withRoute(newAdminReturnStatusCmd(app), guard.RouteAdminOrders),
		withRoute(newAdminRefundCmd(app), guard.RouteAdminOrders),
	)
	return cmd
}

func newAdminOrdersCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List every order",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.Client.ListAllOrders(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load orders")
			}
			if status != "" {
				orders = slices.DeleteFunc(orders, func(o client.Order) bool {
					return !strings.EqualFold(o.OrderStatus, status)
				})
			}
			if len(orders) == 0 {
				app.println("No orders found.")
				return nil
			}

			w := newTable(app.Out, "ID", "CUSTOMER", "MODE", "STATUS", "TOTAL", "PLACED")
			for _, o := range orders {
				badge := present.Badge(o.OrderStatus, present.OrderStatusTone(o.OrderStatus), app.Plain)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.UserName, o.OrderMode, badge, present.Rupees(o.Total), formatDate(o.CreatedAt))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only orders in this status")
	return cmd
}

func newAdminStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> [status]",
		Short: "Move an order along (prompts for the status when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}

			orders, err := app.Client.ListAllOrders(ctx)
			if err != nil {
				return apiError(err, "Failed to load orders")
			}
			idx := slices.IndexFunc(orders, func(o client.Order) bool { return o.ID == id })
			if idx == -1 {
				return fmt.Errorf("order #%d not found", id)
			}
			current := orders[idx].OrderStatus
			allowed := present.NextOrderStatuses(current)

			var next string
			if len(args) == 2 {
				next = args[1]
			} else {
				prompt := promptui.Select{Label: fmt.Sprintf("Order #%d is %s, move to", id, current), Items: allowed}
				if _, next, err = prompt.Run(); err != nil {
					return fmt.Errorf("status selection cancelled: %w", err)
				}
			}
			if !slices.Contains(allowed, next) {
				return fmt.Errorf("an order that is %s can move to: %s", current, strings.Join(allowed, ", "))
			}

			updated, err := app.Client.UpdateOrderStatus(ctx, id, next)
			if err != nil {
				return apiError(err, "Failed to update status")
			}
			app.printf("Order #%d is now %s.\n", updated.ID, updated.OrderStatus)
			return nil
		},
	}
}

func newAdminPaymentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "payment <order-id>",
		Short: "Show the payment record of any order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			info, err := app.Client.AdminPaymentInfo(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load payment info")
			}
			app.printf("Gateway order: %s\n", info.RazorpayOrderID)
			app.printf("Payment:       %s\n", info.RazorpayPaymentID)
			app.printf("Signature:     %s\n", info.RazorpaySignature)
			return nil
		},
	}
}

func newAdminStatsCmd(app *App) *cobra.Command {
	var from, to string
	var weekly, monthly bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Order totals for today, a week, a month or a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				r   *client.RangeStats
				err error
			)
			switch {
			case from != "" || to != "":
				var sr client.StatsRange
				if sr, err = statsRange(from, to); err != nil {
					return err
				}
				r, err = app.Client.OrderStatsByRange(ctx, sr)
			case weekly:
				r, err = app.Client.WeeklyOrderStats(ctx)
			case monthly:
				r, err = app.Client.MonthlyOrderStats(ctx)
			default:
				stats, err := app.Client.OrderStats(ctx)
				if err != nil {
					return apiError(err, "Failed to load stats")
				}
				app.printf("Today: %d orders, %s\n", stats.TodayCount, present.Rupees(stats.TodayTotal))
				app.printf("Total: %d orders, %s\n", stats.TotalCount, present.Rupees(stats.TotalAmount))
				if len(stats.RecentOrders) > 0 {
					app.println("\nRecent orders:")
					for _, o := range stats.RecentOrders {
						app.printf("  #%d %s %s %s\n", o.ID, o.UserName, o.OrderStatus, present.Rupees(o.Total))
					}
				}
				return nil
			}
			if err != nil {
				return apiError(err, "Failed to load stats")
			}
			app.printf("%d orders, %s\n", r.OrderCount, present.Rupees(r.OrderTotal))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Range end, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&weekly, "weekly", false, "This week, Monday to Sunday")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "This calendar month")
	cmd.MarkFlagsMutuallyExclusive("weekly", "monthly", "from")
	return cmd
}

// statsRange covers whole days from start to end
func statsRange(from, to string) (client.StatsRange, error) {
	if from == "" || to == "" {
		return client.StatsRange{}, fmt.Errorf("both --from and --to are required")
	}
	start, err := time.ParseInLocation(time.DateOnly, from, time.Local)
	if err != nil {
		return client.StatsRange{}, fmt.Errorf("invalid --from date '%s'", from)
	}
	end, err := time.ParseInLocation(time.DateOnly, to, time.Local)
	if err != nil {
		return client.StatsRange{}, fmt.Errorf("invalid --to date '%s'", to)
	}
	if end.Before(start) {
		return client.StatsRange{}, fmt.Errorf("--to must not be before --from")
	}
	end = end.Add(24*time.Hour - time.Second)
	return client.StatsRange{StartDate: client.DateTime{Time: start}, EndDate: client.DateTime{Time: end}}, nil
}

func newAdminUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Client.ListUsers(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load users")
			}
			w := newTable(app.Out, "ID", "NAME", "EMAIL", "ROLE")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
			}
			w.Flush()
			return nil
		},
	}
}

// newAdminCartsCmd lists every cart line, or every wishlist line
func newAdminCartsCmd(app *App, wishlists bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carts",
		Short: "List what is in every cart",
	}
	if wishlists {
		cmd.Use = "wishlists"
		cmd.Short = "List what is on every wishlist"
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		type line struct {
			user *client.User
			book client.Book
		}
		var lines []line

		if wishlists {
			items, err := app.Client.ListAllWishlistItems(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load wishlists")
			}
			for _, it := range items {
				lines = append(lines, line{it.User, it.Book})
			}
		} else {
			items, err := app.Client.ListAllCartItems(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load carts")
			}
			for _, it := range items {
				lines = append(lines, line{it.User, it.Book})
			}
		}

		w := newTable(app.Out, "USER", "BOOK", "PRICE")
		for _, l := range lines {
			user := "-"
			if l.user != nil {
				user = l.user.Email
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", user, l.book.Name, present.Rupees(l.book.Price))
		}
		w.Flush()
		return nil
	}
	return cmd
}

func newAdminReturnsCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "returns",
		Short: "List return and replacement requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reqs []client.ReturnRequest
				err  error
			)
			if status != "" {
				reqs, err = app.Client.ListReturnRequestsByStatus(cmd.Context(), status)
			} else {
				reqs, err = app.Client.ListAllReturnRequests(cmd.Context())
			}
			if err != nil {
				return apiError(err, "Failed to load requests")
			}
			app.printReturnRequests(reqs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only requests in this status")
	return cmd
}

func newAdminReturnStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "return-status <id> <status>",
		Short: "Approve, reject or close a return request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			r, err := app.Client.UpdateReturnStatus(cmd.Context(), id, strings.ToUpper(args[1]))
			if err != nil {
				return apiError(err, "Failed to update request")
			}
			app.printf("Request #%d is now %s.\n", r.ID, r.Status)
			return nil
		},
	}
}

func newAdminRefundCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refund <id>",
		Short: "Refund an approved return",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			refund, err := app.Client.RefundReturnRequest(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to refund")
			}
			app.printf("Refund %s %s: %.2f %s against %s\n", refund.ID, refund.Status, float64(refund.Amount)/100, refund.Currency, refund.PaymentID)
			return nil
		},
	}
}
