package client

import (
	"context"
	"fmt"
	"net/http"
)

// PaymentKey returns the public key the payment widget is opened with
func (c *Client) PaymentKey(ctx context.Context) (string, error) {
	var resp PaymentKey
	if err := c.doJSON(ctx, http.MethodGet, "/payment/key", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Key, nil
}

// CreateGatewayOrder creates a payment gateway order for amount (in rupees)
func (c *Client) CreateGatewayOrder(ctx context.Context, amount float64) (*GatewayOrder, error) {
	var order GatewayOrder
	payload := map[string]float64{"amount": amount}
	if err := c.doJSON(ctx, http.MethodPost, "/payment/create-order", nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment checks the signature the widget returned
func (c *Client) VerifyPayment(ctx context.Context, data PaymentData) (bool, error) {
	var resp PaymentVerification
	if err := c.doJSON(ctx, http.MethodPost, "/payment/verify", nil, data, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// PlacePaidOrder places an order paid through the gateway
func (c *Client) PlacePaidOrder(ctx context.Context, order Order, data PaymentData) (*Order, error) {
	var placed Order
	payload := struct {
		Order       Order       `json:"order"`
		PaymentData PaymentData `json:"paymentData"`
	}{Order: order, PaymentData: data}
	if err := c.doJSON(ctx, http.MethodPost, "/payment/place-order", nil, payload, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

// PaymentInfo returns the stored gateway record of a UPI order
func (c *Client) PaymentInfo(ctx context.Context, orderID int64) (*PaymentInfo, error) {
	var info PaymentInfo
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/payment/info/%d", orderID), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
