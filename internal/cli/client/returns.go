package client

import (
	"context"
	"fmt"
	"net/http"
)

// CreateReturnRequest files a return or replacement request with optional photos
func (c *Client) CreateReturnRequest(ctx context.Context, req ReturnRequest, images ...*File) (*ReturnRequest, error) {
	var created ReturnRequest
	if err := c.doMultipart(ctx, http.MethodPost, "/returns/request", partImages, req, &created, images...); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListReturnRequests returns the requests filed by userID
func (c *Client) ListReturnRequests(ctx context.Context, userID int64) ([]ReturnRequest, error) {
	var reqs []ReturnRequest
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/returns/user/%d", userID), nil, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetReturnRequest returns a single request
func (c *Client) GetReturnRequest(ctx context.Context, id int64) (*ReturnRequest, error) {
	var req ReturnRequest
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/returns/%d", id), nil, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// EditReturnRequest updates a request; new images are appended by the backend
func (c *Client) EditReturnRequest(ctx context.Context, id int64, req ReturnRequest, images ...*File) (*ReturnRequest, error) {
	var updated ReturnRequest
	if err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/returns/%d", id), partImages, req, &updated, images...); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteReturnRequest withdraws a request
func (c *Client) DeleteReturnRequest(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/returns/%d", id), nil, nil, nil)
}
