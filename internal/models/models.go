// Package models holds the stub backend's persisted records.
//
// JSON shapes match what the Bookify backend returns so the client can be
// exercised end to end against them.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Account roles
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is an account
type User struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"not null"`
	Email           string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string `json:"-" gorm:"not null"`
	Role            string `json:"role" gorm:"not null;default:ROLE_USER"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Address         string `json:"address,omitempty"`
	FavouriteBook   string `json:"favouriteBook,omitempty"`
	FavouriteAuthor string `json:"favouriteAuthor,omitempty"`
	ResetToken      string `json:"-" gorm:"index"`
}

// Author is a catalog author
type Author struct {
	ID                   uint     `json:"id" gorm:"primaryKey"`
	Name                 string   `json:"name" gorm:"not null"`
	Description          string   `json:"description" gorm:"type:text"`
	ImageURL             string   `json:"imageUrl,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	ProgrammingLanguages []string `json:"programmingLanguages" gorm:"serializer:json"`

	// Computed fields (populated per request, not persisted)
	BookCount int64 `json:"bookCount" gorm:"-"`
}

// Review is a rating left on a book
type Review struct {
	Comment string   `json:"comment"`
	Rating  *float64 `json:"rating"`
}

// Book is a catalog book
type Book struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AuthorID    *uint     `json:"-" gorm:"index"`
	Author      *Author   `json:"author,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Reviews     []Review  `json:"reviews" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CartItem is one book in a user's cart
type CartItem struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"-" gorm:"uniqueIndex:idx_cart_user_book"`
	User   *User `json:"user,omitempty"`
	BookID uint  `json:"-" gorm:"uniqueIndex:idx_cart_user_book"`
	Book   Book  `json:"book"`
}

// WishlistItem is one book in a user's wishlist
type WishlistItem struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"-" gorm:"uniqueIndex:idx_wishlist_user_book"`
	User   *User `json:"user,omitempty"`
	BookID uint  `json:"-" gorm:"uniqueIndex:idx_wishlist_user_book"`
	Book   Book  `json:"book"`
}

// Order statuses
const (
	OrderStatusPlaced    = "Placed"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// UserRef is how an order names its owner on the wire
type UserRef struct {
	ID uint `json:"id"`
}

// Order is a placed order
type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserName     string      `json:"userName" gorm:"not null"`
	Total        float64     `json:"total"`
	OrderMode    string      `json:"orderMode" gorm:"not null"`
	OrderStatus  string      `json:"orderStatus" gorm:"not null"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	DeliveryDate time.Time   `json:"deliveryDate"`
	Address      string      `json:"address" gorm:"not null"`
	PhoneNumber  string      `json:"phoneNumber" gorm:"not null"`
	UserID       uint        `json:"-" gorm:"index;not null"`
	User         UserRef     `json:"user" gorm:"-"`
	Items        []OrderItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave copies the wire-level user reference into the foreign key
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if o.User.ID != 0 {
		o.UserID = o.User.ID
	}
	return nil
}

// AfterFind exposes the owner as a user reference
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.User = UserRef{ID: o.UserID}
	return nil
}

// OrderItem is one line of an order, with the book snapshot taken at purchase
type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"-" gorm:"index"`
	BookID     uint     `json:"bookId"`
	BookName   string   `json:"bookName"`
	AuthorName string   `json:"authorName"`
	Quantity   int      `json:"quantity"`
	UnitPrice  float64  `json:"unitPrice"`
	Subtotal   float64  `json:"subtotal"`
	Review     string   `json:"review,omitempty" gorm:"type:text"`
	Rating     *float64 `json:"rating,omitempty"`
}

// PaymentRecord is the gateway payment stored for a UPI order
type PaymentRecord struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	OrderID           uint   `json:"orderId" gorm:"uniqueIndex"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

// Return request statuses
const (
	ReturnStatusPending  = "PENDING"
	ReturnStatusApproved = "APPROVED"
	ReturnStatusRefunded = "REFUNDED"
)

// ReturnRequest is a return or replacement request
type ReturnRequest struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          uint       `json:"userId" gorm:"index"`
	OrderID         uint       `json:"orderId" gorm:"index"`
	BookID          uint       `json:"bookId"`
	BookTitle       string     `json:"bookTitle,omitempty"`
	BookAuthor      string     `json:"bookAuthor,omitempty"`
	Quantity        int        `json:"quantity"`
	CustomerName    string     `json:"customerName,omitempty"`
	CustomerAddress string     `json:"customerAddress,omitempty"`
	CustomerPhone   string     `json:"customerPhone,omitempty"`
	PaymentID       string     `json:"paymentId,omitempty"`
	RefundedAmount  *float64   `json:"refundedAmount,omitempty"`
	Type            string     `json:"type"`
	Reason          string     `json:"reason" gorm:"type:text"`
	ImageURLs       []string   `json:"imageUrls" gorm:"serializer:json"`
	Status          string     `json:"status" gorm:"index"`
	RequestedDate   *time.Time `json:"requestedDate"`
	ProcessedDate   *time.Time `json:"processedDate"`
	DeliveryDate    *time.Time `json:"deliveryDate"`
}

// AutoMigrate runs all model migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Author{},
		&Book{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&PaymentRecord{},
		&ReturnRequest{},
	)
}

// FindByID finds a record by its numeric ID
func FindByID[T any](db *gorm.DB, id uint, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id uint, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
