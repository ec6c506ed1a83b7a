package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PlaceOrder places a cash order
func (c *Client) PlaceOrder(ctx context.Context, order Order) (*Order, error) {
	var placed Order
	if err := c.doJSON(ctx, http.MethodPost, "/order/place", nil, order, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

// ListOrders returns the orders of userID
func (c *Client) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/order/user/%d", userID), nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// EditOrder updates the delivery details of an order
func (c *Client) EditOrder(ctx context.Context, orderID int64, update OrderUpdate) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/order/edit/%d", orderID), nil, update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RemoveOrder cancels an order
func (c *Client) RemoveOrder(ctx context.Context, orderID int64) (string, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/order/%d", orderID), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RemoveOrderItem removes a single book from an order
func (c *Client) RemoveOrderItem(ctx context.Context, orderID, bookID int64) (string, error) {
	var resp MessageResponse
	path := fmt.Sprintf("/order/%d/book/%d", orderID, bookID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// AddReview rates a book the user ordered
func (c *Client) AddReview(ctx context.Context, orderID, bookID int64, review ReviewInput) (*OrderItem, error) {
	var item OrderItem
	path := fmt.Sprintf("/order/%d/book/%d/review", orderID, bookID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, review, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PrintOrder fetches a delivered order for invoicing. The backend refuses
// orders in any other status.
func (c *Client) PrintOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/order/%d/print/%s", orderID, url.PathEscape("Delivered"))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
