package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id '%s'", what, arg)
	}
	return id, nil
}

// NewBooksCmd creates the admin books command
func NewBooksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage the book catalog (admin)",
	}

	cmd.AddCommand(
		newBooksListCmd(app),
		newBooksShowCmd(app),
		newBookWriteCmd(app, true),
		newBookWriteCmd(app, false),
		newBooksDeleteCmd(app),
	)
	for _, sub := range cmd.Commands() {
		withRoute(sub, guard.RouteBooks)
	}
	return cmd
}

func newBooksListCmd(app *App) *cobra.Command {
	var page, size int
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchPage(page, func(p int) (*client.Page[client.Book], error) {
				if search != "" {
					return app.Client.SearchBooks(cmd.Context(), search, p, size)
				}
				return app.Client.ListBooks(cmd.Context(), p, size)
			})
			if err != nil {
				return apiError(err, "Failed to load books")
			}
			app.printBookPage(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", adminBooksPageSize, "Books per page")
	cmd.Flags().StringVar(&search, "search", "", "Only books whose name contains this")
	return cmd
}

func newBooksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			b, err := app.Client.GetBook(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load book")
			}

			app.printf("%s by %s\n", b.Name, authorName(*b))
			app.printf("Price: %s  Stock: %d\n", present.Rupees(b.Price), b.Quantity)
			app.println(b.Description)
			if len(b.Reviews) > 0 {
				app.println("\nReviews:")
				for _, r := range b.Reviews {
					rating := "-"
					if r.Rating != nil {
						rating = strconv.FormatFloat(*r.Rating, 'f', -1, 64)
					}
					app.printf("  %s/5  %s\n", rating, r.Comment)
				}
			}
			return nil
		},
	}
}

// newBookWriteCmd builds `create` or `update <id>`. Update starts from the
// stored book so only the given flags change.
func newBookWriteCmd(app *App, creating bool) *cobra.Command {
	var in client.BookInput
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a book",
		Args:  cobra.NoArgs,
	}
	if !creating {
		cmd.Use = "update <id>"
		cmd.Short = "Change a book"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := in

		var id int64
		if !creating {
			var err error
			if id, err = parseID(args[0], "book"); err != nil {
				return err
			}
			current, err := app.Client.GetBook(ctx, id)
			if err != nil {
				return apiError(err, "Failed to load book")
			}
			input = mergeBook(cmd, current, in)
		}

		form := forms.Book{
			Name:        input.Name,
			Description: input.Description,
			AuthorID:    input.AuthorID,
			Price:       input.Price,
			Quantity:    input.Quantity,
			HasFile:     image != "",
			Creating:    creating,
		}
		if err := forms.Validate(form); err != nil {
			return err
		}

		file, closeFile, err := openFile(image)
		if err != nil {
			return err
		}
		defer closeFile()

		var saved *client.Book
		if creating {
			saved, err = app.Client.CreateBook(ctx, input, file)
		} else {
			saved, err = app.Client.UpdateBook(ctx, id, input, file)
		}
		if err != nil {
			return apiError(err, "Failed to save book")
		}
		app.printf("Saved book #%d %s.\n", saved.ID, saved.Name)
		return nil
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().Int64Var(&in.AuthorID, "author-id", 0, "Author id (see 'bookify authors names')")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "Price in rupees")
	cmd.Flags().IntVar(&in.Quantity, "quantity", 0, "Copies in stock")
	cmd.Flags().StringVar(&image, "image", "", "Path to the cover image")
	return cmd
}

func mergeBook(cmd *cobra.Command, current *client.Book, in client.BookInput) client.BookInput {
	out := client.BookInput{
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
		Quantity:    current.Quantity,
	}
	if current.Author != nil {
		out.AuthorID = current.Author.ID
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		out.Name = in.Name
	}
	if flags.Changed("description") {
		out.Description = in.Description
	}
	if flags.Changed("author-id") {
		out.AuthorID = in.AuthorID
	}
	if flags.Changed("price") {
		out.Price = in.Price
	}
	if flags.Changed("quantity") {
		out.Quantity = in.Quantity
	}
	return out
}

func newBooksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := app.Client.DeleteBook(cmd.Context(), id); err != nil {
				return apiError(err, "Failed to delete book")
			}
			app.printf("Deleted book #%d.\n", id)
			return nil
		},
	}
}

// NewAuthorsCmd creates the admin authors command
func NewAuthorsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "Manage authors (admin)",
	}

	cmd.AddCommand(
		newAuthorsListCmd(app),
		newAuthorsShowCmd(app),
		newAuthorsNamesCmd(app),
		newAuthorWriteCmd(app, true),
		newAuthorWriteCmd(app, false),
		newAuthorsDeleteCmd(app),
	)
	for _, sub := range cmd.Commands() {
		withRoute(sub, guard.RouteAuthors)
	}
	return cmd
}

func newAuthorsListCmd(app *App) *cobra.Command {
	var page, size int
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchPage(page, func(p int) (*client.Page[client.Author], error) {
				if search != "" {
					return app.Client.SearchAuthors(cmd.Context(), search, p, size)
				}
				return app.Client.ListAuthors(cmd.Context(), p, size)
			})
			if err != nil {
				return apiError(err, "Failed to load authors")
			}
			if len(result.Content) == 0 {
				app.println("No authors found.")
				return nil
			}

			w := newTable(app.Out, "ID", "NAME", "GENDER", "LANGUAGES", "BOOKS")
			for _, a := range result.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", a.ID, a.Name, a.Gender, strings.Join(a.ProgrammingLanguages, ", "), a.BookCount)
			}
			w.Flush()
			app.printPager(result.Number, result.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", authorsPageSize, "Authors per page")
	cmd.Flags().StringVar(&search, "search", "", "Only authors whose name contains this")
	return cmd
}

func newAuthorsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "author")
			if err != nil {
				return err
			}
			a, err := app.Client.GetAuthor(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load author")
			}
			app.printf("%s (%s)\n", a.Name, a.Gender)
			app.printf("Languages: %s\n", strings.Join(a.ProgrammingLanguages, ", "))
			app.println(a.Description)
			return nil
		},
	}
}

func newAuthorsNamesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List author ids and names, for --author-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.Client.AuthorNames(cmd.Context())
			if err != nil {
				return apiError(err, "Failed to load authors")
			}
			w := newTable(app.Out, "ID", "NAME")
			for _, n := range names {
				fmt.Fprintf(w, "%d\t%s\n", n.ID, n.Name)
			}
			w.Flush()
			return nil
		},
	}
}

func newAuthorWriteCmd(app *App, creating bool) *cobra.Command {
	var in client.AuthorInput
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an author",
		Args:  cobra.NoArgs,
	}
	if !creating {
		cmd.Use = "update <id>"
		cmd.Short = "Change an author"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := in

		var id int64
		if !creating {
			var err error
			if id, err = parseID(args[0], "author"); err != nil {
				return err
			}
			current, err := app.Client.GetAuthor(ctx, id)
			if err != nil {
				return apiError(err, "Failed to load author")
			}
			input = mergeAuthor(cmd, current, in)
		}

		form := forms.Author{
			Name:                 input.Name,
			Description:          input.Description,
			Gender:               input.Gender,
			ProgrammingLanguages: input.ProgrammingLanguages,
			HasImage:             image != "",
			Creating:             creating,
		}
		if err := forms.Validate(form); err != nil {
			return err
		}

		file, closeFile, err := openFile(image)
		if err != nil {
			return err
		}
		defer closeFile()

		var saved *client.Author
		if creating {
			saved, err = app.Client.CreateAuthor(ctx, input, file)
		} else {
			saved, err = app.Client.UpdateAuthor(ctx, id, input, file)
		}
		if err != nil {
			return apiError(err, "Failed to save author")
		}
		app.printf("Saved author #%d %s.\n", saved.ID, saved.Name)
		return nil
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Biography")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "Gender")
	cmd.Flags().StringSliceVar(&in.ProgrammingLanguages, "language", nil, "Programming language written about (repeatable)")
	cmd.Flags().StringVar(&image, "image", "", "Path to a portrait")
	return cmd
}

func mergeAuthor(cmd *cobra.Command, current *client.Author, in client.AuthorInput) client.AuthorInput {
	out := client.AuthorInput{
		Name:                 current.Name,
		Description:          current.Description,
		Gender:               current.Gender,
		ProgrammingLanguages: current.ProgrammingLanguages,
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		out.Name = in.Name
	}
	if flags.Changed("description") {
		out.Description = in.Description
	}
	if flags.Changed("gender") {
		out.Gender = in.Gender
	}
	if flags.Changed("language") {
		out.ProgrammingLanguages = in.ProgrammingLanguages
	}
	return out
}

func newAuthorsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an author without books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "author")
			if err != nil {
				return err
			}
			if err := app.Client.DeleteAuthor(cmd.Context(), id); err != nil {
				return apiError(err, "Failed to delete author")
			}
			app.printf("Deleted author #%d.\n", id)
			return nil
		},
	}
}
