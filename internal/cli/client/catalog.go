package client

import (
	"context"
	"fmt"
	"net/http"
)

// Default page sizes used by the backend when none is given
const (
	DefaultAuthorPageSize   = 4
	DefaultBookPageSize     = 8
	DefaultUserBookPageSize = 3
)

// ListAuthors returns a page of authors with their book counts
func (c *Client) ListAuthors(ctx context.Context, page, size int) (*Page[Author], error) {
	var p Page[Author]
	if err := c.doJSON(ctx, http.MethodGet, "/authors", pageQuery(page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAuthor returns a single author
func (c *Client) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	var a Author
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/authors/%d", id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAuthor creates an author; image is optional
func (c *Client) CreateAuthor(ctx context.Context, in AuthorInput, image *File) (*Author, error) {
	var a Author
	if err := c.doMultipart(ctx, http.MethodPost, "/authors", partFile, in, &a, image); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAuthor replaces an author; a nil image keeps the current one
func (c *Client) UpdateAuthor(ctx context.Context, id int64, in AuthorInput, image *File) (*Author, error) {
	var a Author
	if err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/authors/%d", id), partFile, in, &a, image); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAuthor deletes an author
func (c *Client) DeleteAuthor(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/authors/%d", id), nil, nil, nil)
}

// AuthorNames returns id/name pairs for every author
func (c *Client) AuthorNames(ctx context.Context) ([]AuthorName, error) {
	var names []AuthorName
	if err := c.doJSON(ctx, http.MethodGet, "/authors/names", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SearchAuthors searches authors by name
func (c *Client) SearchAuthors(ctx context.Context, name string, page, size int) (*Page[Author], error) {
	var p Page[Author]
	if err := c.doJSON(ctx, http.MethodGet, "/authors/search", searchQuery(name, page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBooks returns a page of books (admin view)
func (c *Client) ListBooks(ctx context.Context, page, size int) (*Page[Book], error) {
	var p Page[Book]
	if err := c.doJSON(ctx, http.MethodGet, "/books", pageQuery(page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBook returns a single book
func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook creates a book with an optional cover image
func (c *Client) CreateBook(ctx context.Context, in BookInput, cover *File) (*Book, error) {
	var b Book
	if err := c.doMultipart(ctx, http.MethodPost, "/books", partFile, in, &b, cover); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBook replaces a book; a nil cover keeps the current one
func (c *Client) UpdateBook(ctx context.Context, id int64, in BookInput, cover *File) (*Book, error) {
	var b Book
	if err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), partFile, in, &b, cover); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBook deletes a book
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil, nil)
}

// SearchBooks searches books by name (admin view)
func (c *Client) SearchBooks(ctx context.Context, name string, page, size int) (*Page[Book], error) {
	var p Page[Book]
	if err := c.doJSON(ctx, http.MethodGet, "/books/search", searchQuery(name, page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUserBooks returns a page of the shop catalog
func (c *Client) ListUserBooks(ctx context.Context, page, size int) (*Page[Book], error) {
	var p Page[Book]
	if err := c.doJSON(ctx, http.MethodGet, "/user/books", pageQuery(page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchUserBooks searches the shop catalog by name
func (c *Client) SearchUserBooks(ctx context.Context, name string, page, size int) (*Page[Book], error) {
	var p Page[Book]
	if err := c.doJSON(ctx, http.MethodGet, "/user/books/search", searchQuery(name, page, size), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
