package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/present"
)

func newTable(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("─", len([]rune(h)))
	}
	fmt.Fprintln(w, strings.Join(rules, "\t"))
	return w
}

// printPager prints the page numbers around the current page, the current
// one in brackets
func (a *App) printPager(number, totalPages int) {
	if totalPages <= 1 {
		return
	}
	start, end := present.PageWindow(number, totalPages)
	pages := make([]string, 0, end-start)
	for p := start; p < end; p++ {
		label := fmt.Sprint(p + 1)
		if p == number {
			label = "[" + label + "]"
		}
		pages = append(pages, label)
	}
	a.printf("\nPage %d of %d: %s\n", number+1, totalPages, strings.Join(pages, " "))
}

func authorName(b client.Book) string {
	if b.Author == nil {
		return "-"
	}
	return b.Author.Name
}

func formatDate(d client.DateTime) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("2006-01-02 15:04")
}

func (a *App) printBooks(books []client.Book) {
	w := newTable(a.Out, "ID", "NAME", "AUTHOR", "PRICE", "STOCK")
	for _, b := range books {
		stock := fmt.Sprint(b.Quantity)
		if b.Quantity == 0 {
			stock = present.Badge("out of stock", present.ToneDanger, a.Plain)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Name, authorName(b), present.Rupees(b.Price), stock)
	}
	w.Flush()
}

func (a *App) printBookPage(page *client.Page[client.Book]) {
	if len(page.Content) == 0 {
		a.println("No books found.")
		return
	}
	a.printBooks(page.Content)
	a.printPager(page.Number, page.TotalPages)
}

func (a *App) printOrder(o client.Order) {
	status := present.Badge(o.OrderStatus, present.OrderStatusTone(o.OrderStatus), a.Plain)
	a.printf("Order #%d  %s  %s  %s\n", o.ID, status, o.OrderMode, present.Rupees(o.Total))
	a.printf("  Placed: %s  Delivery: %s\n", formatDate(o.CreatedAt), formatDate(o.DeliveryDate))
	a.printf("  Ship to: %s, %s (%s)\n", o.UserName, o.Address, o.PhoneNumber)

	w := newTable(a.Out, "  BOOK", "AUTHOR", "QTY", "PRICE", "SUBTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(w, "  %d %s\t%s\t%d\t%s\t%s\n", it.BookID, it.BookName, it.AuthorName, it.Quantity,
			present.Rupees(it.UnitPrice), present.Rupees(it.Subtotal))
	}
	w.Flush()
}

func (a *App) printReturnRequests(reqs []client.ReturnRequest) {
	if len(reqs) == 0 {
		a.println("No return or replacement requests.")
		return
	}
	w := newTable(a.Out, "ID", "ORDER", "BOOK", "TYPE", "QTY", "STATUS", "REQUESTED")
	for _, r := range reqs {
		status := present.Badge(r.Status, present.ReturnStatusTone(r.Status), a.Plain)
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.OrderID, r.BookTitle, r.Type, r.Quantity, status, formatDate(r.RequestedDate))
	}
	w.Flush()
}

// openFile opens path for upload; an empty path is no file
func openFile(path string) (*client.File, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, closer, err := client.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = closer.Close() }, nil
}

// openFiles opens every path for upload
func openFiles(paths []string) ([]*client.File, func(), error) {
	var files []*client.File
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	for _, p := range paths {
		f, closeFn, err := openFile(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		closers = append(closers, closeFn)
	}
	return files, closeAll, nil
}

// zeroBased converts a one-based page flag to the backend's page index
func zeroBased(page int) int {
	return max(page-1, 0)
}

// fetchPage loads the 1-based page; asking past the last page shows the last one
func fetchPage[T any](page int, load func(page int) (*client.Page[T], error)) (*client.Page[T], error) {
	want := zeroBased(page)
	result, err := load(want)
	if err != nil {
		return nil, err
	}
	if result.TotalPages == 0 {
		return result, nil
	}
	if clamped := present.ClampPage(want, result.TotalPages); clamped != want {
		return load(clamped)
	}
	return result, nil
}
