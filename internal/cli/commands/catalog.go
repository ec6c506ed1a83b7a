package commands

import (
	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/guard"
)

const (
	userBooksPageSize  = 3
	adminBooksPageSize = 8
	authorsPageSize    = 4
)

// NewCatalogCmd creates the catalog command, the shopper's view of the books
func NewCatalogCmd(app *App) *cobra.Command {
	var page, size int
	var search string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse books",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchPage(page, func(p int) (*client.Page[client.Book], error) {
				if search != "" {
					return app.Client.SearchUserBooks(cmd.Context(), search, p, size)
				}
				return app.Client.ListUserBooks(cmd.Context(), p, size)
			})
			if err != nil {
				return apiError(err, "Failed to load books")
			}
			app.printBookPage(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", userBooksPageSize, "Books per page")
	cmd.Flags().StringVar(&search, "search", "", "Only books whose name contains this")

	cmd.AddCommand(newCatalogNamesCmd(app))
	return withRoute(cmd, guard.RouteAllBooks)
}

// newCatalogNamesCmd lists the names offered as profile favourites. The
// endpoints are public, so the command is not guarded.
func newCatalogNamesCmd(app *App) *cobra.Command {
	var authors bool

	cmd := &cobra.Command{
		Use:   "names",
		Short: "List every book (or author) name",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := app.Client.ListBookNames
			if authors {
				list = app.Client.ListAuthorNames
			}
			names, err := list(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load names")
			}
			for _, n := range names {
				app.println(n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&authors, "authors", false, "List author names instead")
	return cmd
}
