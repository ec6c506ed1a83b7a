package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateTime is a backend timestamp. The backend writes local date-times without
// a zone ("2025-09-01T10:00:00"); RFC 3339 and plain dates are accepted too.
type DateTime struct {
	time.Time
}

const localDateTimeLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(localDateTimeLayout))
}

// Page is a slice of a paginated listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token and role issued at login
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is an account profile
type User struct {
	ID              int64  `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password,omitempty"`
	Role            string `json:"role,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Address         string `json:"address,omitempty"`
	FavouriteBook   string `json:"favouriteBook,omitempty"`
	FavouriteAuthor string `json:"favouriteAuthor,omitempty"`
}

// Author is a catalog author
type Author struct {
	ID                   int64    `json:"id,omitempty"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	ImageURL             string   `json:"imageUrl,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	ProgrammingLanguages []string `json:"programmingLanguages,omitempty"`
	BookCount            int64    `json:"bookCount,omitempty"`
}

// AuthorInput is the `value` part sent when creating or updating an author
type AuthorInput struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Gender               string   `json:"gender"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
}

// Review is a reader's rating of a book
type Review struct {
	Comment string   `json:"comment"`
	Rating  *float64 `json:"rating"`
}

// Book is a catalog book
type Book struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Author      *Author  `json:"author,omitempty"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Reviews     []Review `json:"reviews,omitempty"`
	CreatedAt   DateTime `json:"createdAt"`
	UpdatedAt   DateTime `json:"updatedAt"`
}

// BookInput is the `value` part sent when creating or updating a book
type BookInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AuthorID    int64   `json:"authorId"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// CartItem is one book in a user's cart. Quantity is tracked client-side
// until the order is placed.
type CartItem struct {
	ID       int64 `json:"id"`
	User     *User `json:"user,omitempty"`
	Book     Book  `json:"book"`
	Quantity int   `json:"quantity,omitempty"`
}

// WishlistItem is one book in a user's wishlist
type WishlistItem struct {
	ID   int64 `json:"id"`
	User *User `json:"user,omitempty"`
	Book Book  `json:"book"`
}

// Order modes
const (
	OrderModeCash = "CASH"
	OrderModeUPI  = "UPI"
)

// OrderItem is one line of an order
type OrderItem struct {
	ID         int64    `json:"id,omitempty"`
	BookID     int64    `json:"bookId"`
	BookName   string   `json:"bookName,omitempty"`
	AuthorName string   `json:"authorName,omitempty"`
	Quantity   int      `json:"quantity"`
	UnitPrice  float64  `json:"unitPrice,omitempty"`
	Subtotal   float64  `json:"subtotal,omitempty"`
	Review     string   `json:"review,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
}

// UserRef references an account by id inside another payload
type UserRef struct {
	ID int64 `json:"id"`
}

// Order is a placed order
type Order struct {
	ID           int64       `json:"id,omitempty"`
	UserName     string      `json:"userName"`
	Total        float64     `json:"total,omitempty"`
	OrderMode    string      `json:"orderMode"`
	OrderStatus  string      `json:"orderStatus,omitempty"`
	CreatedAt    DateTime    `json:"createdAt"`
	UpdatedAt    DateTime    `json:"updatedAt"`
	DeliveryDate DateTime    `json:"deliveryDate"`
	Address      string      `json:"address"`
	PhoneNumber  string      `json:"phoneNumber"`
	User         *UserRef    `json:"user,omitempty"`
	Items        []OrderItem `json:"items"`
}

// OrderUpdate is the editable part of an order
type OrderUpdate struct {
	UserName     string   `json:"userName,omitempty"`
	Address      string   `json:"address,omitempty"`
	PhoneNumber  string   `json:"phoneNumber,omitempty"`
	DeliveryDate string   `json:"deliveryDate,omitempty"` // yyyy-mm-dd
}

// ReviewInput rates a book in an order
type ReviewInput struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

// MessageResponse is the `{"message": ...}` body some deletions answer with
type MessageResponse struct {
	Message string `json:"message"`
}

// PaymentKey is the public key for the payment widget
type PaymentKey struct {
	Key string `json:"key"`
}

// GatewayOrder is the payment gateway's order; Amount is in the smallest
// currency unit
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// PaymentData is what the payment widget hands back on success
type PaymentData struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// PaymentVerification is the backend's verdict on a payment signature
type PaymentVerification struct {
	Success bool `json:"success"`
}

// PaymentInfo is the stored gateway record for a UPI order
type PaymentInfo struct {
	ID                int64  `json:"id"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

// OrderStats is the admin dashboard summary
type OrderStats struct {
	TodayCount   int64   `json:"todayCount"`
	TotalCount   int64   `json:"totalCount"`
	TodayTotal   float64 `json:"todayTotal"`
	TotalAmount  float64 `json:"totalAmount"`
	RecentOrders []Order `json:"recentOrders"`
}

// RangeStats summarises the orders in a date range
type RangeStats struct {
	OrderCount int64   `json:"orderCount"`
	OrderTotal float64 `json:"orderTotal"`
}

// StatsRange bounds a range-stats query
type StatsRange struct {
	StartDate DateTime `json:"startDate"`
	EndDate   DateTime `json:"endDate"`
}

// Return request types and statuses
const (
	ReturnTypeReturn      = "RETURN"
	ReturnTypeReplacement = "REPLACEMENT"

	ReturnStatusPending  = "PENDING"
	ReturnStatusApproved = "APPROVED"
	ReturnStatusRejected = "REJECTED"
	ReturnStatusReplaced = "REPLACED"
	ReturnStatusRefunded = "REFUNDED"
)

// ReturnRequest is a return or replacement request
type ReturnRequest struct {
	ID              int64    `json:"id,omitempty"`
	UserID          int64    `json:"userId"`
	OrderID         int64    `json:"orderId"`
	BookID          int64    `json:"bookId"`
	BookTitle       string   `json:"bookTitle,omitempty"`
	BookAuthor      string   `json:"bookAuthor,omitempty"`
	Quantity        int      `json:"quantity"`
	CustomerName    string   `json:"customerName,omitempty"`
	CustomerAddress string   `json:"customerAddress,omitempty"`
	CustomerPhone   string   `json:"customerPhone,omitempty"`
	PaymentID       string   `json:"paymentId,omitempty"`
	RefundedAmount  *float64 `json:"refundedAmount,omitempty"`
	Type            string   `json:"type"`
	Reason          string   `json:"reason"`
	ImageURLs       []string `json:"imageUrls,omitempty"`
	Status          string   `json:"status,omitempty"`
	RequestedDate   DateTime `json:"requestedDate"`
	ProcessedDate   DateTime `json:"processedDate"`
	DeliveryDate    DateTime `json:"deliveryDate"`
}

// AuthorName is the id/name pair used to fill author pickers
type AuthorName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserIDResponse answers a lookup by email
type UserIDResponse struct {
	UserID int64 `json:"userId"`
}

// Refund is the gateway refund record returned when a return is refunded
type Refund struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}
