package commands

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewReturnsCmd creates the returns command
func NewReturnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "returns",
		Short: "Show your return and replacement requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID(cmd.Context())
			if err != nil {
				return err
			}
			reqs, err := app.Client.ListReturnRequests(cmd.Context(), userID)
			if err != nil {
				return apiError(err, "Failed to load requests")
			}
			app.printReturnRequests(reqs)
			return nil
		},
	}

	cmd.AddCommand(
		newReturnsShowCmd(app),
		newReturnsCreateCmd(app),
		newReturnsEditCmd(app),
		newReturnsDeleteCmd(app),
	)
	for _, sub := range cmd.Commands() {
		withRoute(sub, guard.RouteReturnReplacement)
	}
	return withRoute(cmd, guard.RouteReturnReplacement)
}

func (a *App) printReturnRequest(r client.ReturnRequest) {
	a.printReturnRequests([]client.ReturnRequest{r})
	a.printf("\nReason: %s\n", r.Reason)
	if r.BookAuthor != "" {
		a.printf("Author: %s\n", r.BookAuthor)
	}
	if r.RefundedAmount != nil {
		a.printf("Refunded: %.2f (payment %s)\n", *r.RefundedAmount, r.PaymentID)
	}
	if !r.DeliveryDate.IsZero() {
		a.printf("Replacement delivery: %s\n", formatDate(r.DeliveryDate))
	}
	for _, img := range r.ImageURLs {
		a.printf("Image: %s\n", img)
	}
}

func newReturnsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			r, err := app.Client.GetReturnRequest(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load request")
			}
			app.printReturnRequest(*r)
			return nil
		},
	}
}

func newReturnsCreateCmd(app *App) *cobra.Command {
	var req client.ReturnRequest
	var images []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Ask to return or replace a book from an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req.Type = strings.ToUpper(req.Type)

			form := forms.ReturnRequest{
				OrderID:  req.OrderID,
				BookID:   req.BookID,
				Quantity: req.Quantity,
				Type:     req.Type,
				Reason:   req.Reason,
			}
			if err := forms.Validate(form); err != nil {
				return err
			}

			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			req.UserID = userID

			files, closeFiles, err := openFiles(images)
			if err != nil {
				return err
			}
			defer closeFiles()

			created, err := app.Client.CreateReturnRequest(ctx, req, files...)
			if err != nil {
				return apiError(err, "Failed to submit request")
			}
			app.printf("Request #%d submitted.\n", created.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&req.OrderID, "order", 0, "Order id")
	cmd.Flags().Int64Var(&req.BookID, "book", 0, "Book id")
	cmd.Flags().IntVar(&req.Quantity, "qty", 1, "Copies to return")
	cmd.Flags().StringVar(&req.Type, "type", client.ReturnTypeReturn, "RETURN or REPLACEMENT")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "What went wrong")
	cmd.Flags().StringSliceVar(&images, "image", nil, "Photo of the problem (repeatable)")
	return cmd
}

func newReturnsEditCmd(app *App) *cobra.Command {
	var reason, kind string
	var qty int
	var images, drop []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			req, err := app.Client.GetReturnRequest(ctx, id)
			if err != nil {
				return apiError(err, "Failed to load request")
			}

			flags := cmd.Flags()
			if flags.Changed("reason") {
				req.Reason = reason
			}
			if flags.Changed("qty") {
				req.Quantity = qty
			}
			if flags.Changed("type") {
				req.Type = strings.ToUpper(kind)
			}
			req.ImageURLs = slices.DeleteFunc(req.ImageURLs, func(u string) bool {
				return slices.Contains(drop, u)
			})

			form := forms.ReturnRequest{
				OrderID:  req.OrderID,
				BookID:   req.BookID,
				Quantity: req.Quantity,
				Type:     req.Type,
				Reason:   req.Reason,
			}
			if err := forms.Validate(form); err != nil {
				return err
			}

			files, closeFiles, err := openFiles(images)
			if err != nil {
				return err
			}
			defer closeFiles()

			updated, err := app.Client.EditReturnRequest(ctx, id, *req, files...)
			if err != nil {
				return apiError(err, "Failed to update request")
			}
			app.println("Request updated.")
			app.printReturnRequest(*updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "What went wrong")
	cmd.Flags().IntVar(&qty, "qty", 1, "Copies to return")
	cmd.Flags().StringVar(&kind, "type", "", "RETURN or REPLACEMENT")
	cmd.Flags().StringSliceVar(&images, "image", nil, "Photo to add (repeatable)")
	cmd.Flags().StringSliceVar(&drop, "drop-image", nil, "Image URL to remove (repeatable)")
	return cmd
}

func newReturnsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Withdraw a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			if err := app.Client.DeleteReturnRequest(cmd.Context(), id); err != nil {
				return apiError(err, "Failed to delete request")
			}
			app.printf("Request #%d withdrawn.\n", id)
			return nil
		},
	}
}
