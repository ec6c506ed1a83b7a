package client

import (
	"context"
	"fmt"
	"net/http"
)

// AddToCart adds bookID to the cart of userID. A book already in the cart
// comes back as a 409 APIError.
func (c *Client) AddToCart(ctx context.Context, userID, bookID int64) (*CartItem, error) {
	var item CartItem
	path := fmt.Sprintf("/cart/%d/%d", userID, bookID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, struct{}{}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCart returns the cart of userID
func (c *Client) GetCart(ctx context.Context, userID int64) ([]CartItem, error) {
	var items []CartItem
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/cart/%d", userID), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetUserName returns the display name of userID
func (c *Client) GetUserName(ctx context.Context, userID int64) (string, error) {
	var name string
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/cart/%d/name", userID), nil, nil, &name); err != nil {
		return "", err
	}
	return name, nil
}

// RemoveFromCart removes a cart entry
func (c *Client) RemoveFromCart(ctx context.Context, userID, cartID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d/%d", userID, cartID), nil, nil, nil)
}

// AddToWishlist adds bookID to the wishlist of userID. A book already in the
// wishlist comes back as a 409 APIError.
func (c *Client) AddToWishlist(ctx context.Context, userID, bookID int64) (*WishlistItem, error) {
	var item WishlistItem
	path := fmt.Sprintf("/wishlist/%d/%d", userID, bookID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, struct{}{}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetWishlist returns the wishlist of userID
func (c *Client) GetWishlist(ctx context.Context, userID int64) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/wishlist/%d", userID), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromWishlist removes a wishlist entry
func (c *Client) RemoveFromWishlist(ctx context.Context, userID, wishlistID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/wishlist/%d/%d", userID, wishlistID), nil, nil, nil)
}
