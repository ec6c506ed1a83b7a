package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewCartCmd creates the cart command
func NewCartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show your cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.userID(cmd.Context())
			if err != nil {
				return err
			}
			items, err := app.Client.GetCart(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load cart")
			}
			if len(items) == 0 {
				app.println("Your cart is empty.")
				return nil
			}

			w := newTable(app.Out, "ITEM", "BOOK", "AUTHOR", "PRICE")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, it.Book.Name, authorName(it.Book), present.Rupees(it.Book.Price))
			}
			w.Flush()

			totals := present.Totals(items)
			app.printf("\nSubtotal:    %s\n", present.Rupees(totals.Subtotal))
			app.printf("GST (5%%):    %s\n", present.Rupees(totals.GST))
			app.printf("Grand total: %s\n", present.Rupees(totals.GrandTotal))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Put a book in your cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddItem(cmd, app, args[0], "cart", app.Client.AddToCart)
		},
	}

	remove := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Take an item out of your cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveItem(cmd, app, args[0], "cart", app.Client.RemoveFromCart)
		},
	}

	cmd.AddCommand(withRoute(add, guard.RouteCart), withRoute(remove, guard.RouteCart))
	return withRoute(cmd, guard.RouteCart)
}

// NewWishlistCmd creates the wishlist command
func NewWishlistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show your wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.userID(cmd.Context())
			if err != nil {
				return err
			}
			items, err := app.Client.GetWishlist(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load wishlist")
			}
			if len(items) == 0 {
				app.println("Your wishlist is empty.")
				return nil
			}

			w := newTable(app.Out, "ITEM", "BOOK", "AUTHOR", "PRICE")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, it.Book.Name, authorName(it.Book), present.Rupees(it.Book.Price))
			}
			w.Flush()
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Save a book for later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddItem(cmd, app, args[0], "wishlist", app.Client.AddToWishlist)
		},
	}

	remove := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Take an item off your wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveItem(cmd, app, args[0], "wishlist", app.Client.RemoveFromWishlist)
		},
	}

	cmd.AddCommand(withRoute(add, guard.RouteWishlist), withRoute(remove, guard.RouteWishlist))
	return withRoute(cmd, guard.RouteWishlist)
}

// runAddItem adds a book to the cart or wishlist. A book that is already
// there is reported, not treated as a failure.
func runAddItem[T any](cmd *cobra.Command, app *App, arg, list string, add func(context.Context, int64, int64) (T, error)) error {
	bookID, err := parseID(arg, "book")
	if err != nil {
		return err
	}
	userID, err := app.userID(cmd.Context())
	if err != nil {
		return err
	}

	if _, err := add(cmd.Context(), userID, bookID); err != nil {
		switch client.Classify(err) {
		case client.KindConflict:
			app.println(client.Message(err, "Book already exists in "+list))
			return nil
		case client.KindServer, client.KindNetwork:
			return &userError{msg: "Could not add to " + list + ". Please try again.", err: err}
		}
		return apiError(err, "Failed to add to "+list)
	}
	app.printf("Added book #%d to your %s.\n", bookID, list)
	return nil
}

func runRemoveItem(cmd *cobra.Command, app *App, arg, list string, remove func(context.Context, int64, int64) error) error {
	itemID, err := parseID(arg, list+" item")
	if err != nil {
		return err
	}
	userID, err := app.userID(cmd.Context())
	if err != nil {
		return err
	}
	if err := remove(cmd.Context(), userID, itemID); err != nil {
		return apiError(err, "Failed to remove from "+list)
	}
	app.printf("Removed from %s.\n", list)
	return nil
}
