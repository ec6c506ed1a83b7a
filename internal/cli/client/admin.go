package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ListAllOrders returns every order (admin)
func (c *Client) ListAllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets the status of an order (admin)
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error) {
	var order Order
	payload := map[string]string{"orderStatus": status}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID), nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AdminPaymentInfo returns the gateway record of an order (admin)
func (c *Client) AdminPaymentInfo(ctx context.Context, orderID int64) (*PaymentInfo, error) {
	var info PaymentInfo
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/admin/orders/info/%d", orderID), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// OrderStats returns today's and all-time order figures (admin)
func (c *Client) OrderStats(ctx context.Context) (*OrderStats, error) {
	var stats OrderStats
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// OrderStatsByRange returns order figures between two timestamps (admin)
func (c *Client) OrderStatsByRange(ctx context.Context, r StatsRange) (*RangeStats, error) {
	var stats RangeStats
	if err := c.doJSON(ctx, http.MethodPost, "/admin/orders/stats/range", nil, r, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WeeklyOrderStats returns this week's order figures (admin)
func (c *Client) WeeklyOrderStats(ctx context.Context) (*RangeStats, error) {
	var stats RangeStats
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders/stats/weekly", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// MonthlyOrderStats returns this month's order figures (admin)
func (c *Client) MonthlyOrderStats(ctx context.Context) (*RangeStats, error) {
	var stats RangeStats
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders/stats/monthly", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers returns every account (admin)
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, "/info/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAllCartItems returns every cart entry across users (admin)
func (c *Client) ListAllCartItems(ctx context.Context) ([]CartItem, error) {
	var items []CartItem
	if err := c.doJSON(ctx, http.MethodGet, "/info/carts", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAllWishlistItems returns every wishlist entry across users (admin)
func (c *Client) ListAllWishlistItems(ctx context.Context) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := c.doJSON(ctx, http.MethodGet, "/info/wishlists", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAllReturnRequests returns every return request (admin)
func (c *Client) ListAllReturnRequests(ctx context.Context) ([]ReturnRequest, error) {
	var reqs []ReturnRequest
	if err := c.doJSON(ctx, http.MethodGet, "/admin/returns/all", nil, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListReturnRequestsByStatus filters return requests by status (admin)
func (c *Client) ListReturnRequestsByStatus(ctx context.Context, status string) ([]ReturnRequest, error) {
	var reqs []ReturnRequest
	path := fmt.Sprintf("/admin/returns/status/%s", url.PathEscape(strings.ToUpper(status)))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// UpdateReturnStatus approves, rejects or marks a request replaced (admin)
func (c *Client) UpdateReturnStatus(ctx context.Context, id int64, status string) (*ReturnRequest, error) {
	q := url.Values{}
	q.Set("status", status)

	var req ReturnRequest
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/returns/update-status/%d", id), q, nil, "", &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// RefundReturnRequest refunds an approved request through the gateway (admin)
func (c *Client) RefundReturnRequest(ctx context.Context, id int64) (*Refund, error) {
	var refund Refund
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/returns/refund/%d", id), nil, nil, "", &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}
