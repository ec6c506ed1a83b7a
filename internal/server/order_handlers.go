package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

// deliveryLeadTime is how far out a new order's delivery date is set
const deliveryLeadTime = 72 * time.Hour

// requestError is a handler failure with the status it should be answered with
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &requestError{status: http.StatusNotFound, message: fmt.Sprintf(format, args...)}
}

// writeFailure answers err, using its status when it is a requestError
func (s *Server) writeFailure(c *gin.Context, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(c, reqErr.status, reqErr.message, nil)
		return
	}
	s.writeDBError(c, err, "Resource not found")
}

// OrderItemRequest is one requested line of a new order
type OrderItemRequest struct {
	BookID   uint `json:"bookId" validate:"required"`
	Quantity int  `json:"quantity" validate:"min=1"`
}

// OrderRequest is the body of a new order. Timestamps, totals and status sent
// by the client are ignored.
type OrderRequest struct {
	UserName    string             `json:"userName" validate:"notblank"`
	OrderMode   string             `json:"orderMode" validate:"oneof=CASH UPI"`
	Address     string             `json:"address" validate:"notblank"`
	PhoneNumber string             `json:"phoneNumber" validate:"notblank"`
	User        *models.UserRef    `json:"user"`
	Items       []OrderItemRequest `json:"items" validate:"dive"`
}

// orderOwner picks the account an order is placed for: the one named in the
// body when the caller may act for it, else the caller
func orderOwner(c *gin.Context, req *OrderRequest) (uint, bool) {
	sessionData, ok := GetSessionData(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized", nil)
		return 0, false
	}
	if req.User == nil || req.User.ID == 0 {
		return sessionData.UserID, true
	}
	if !requireSelf(c, req.User.ID) {
		return 0, false
	}
	return req.User.ID, true
}

// createOrder decrements stock, snapshots each book onto its line, clears the
// owner's cart and stores the order, all in tx
func (s *Server) createOrder(tx *gorm.DB, userID uint, req *OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, badRequest("Order must contain at least one item.")
	}

	now := s.now()
	order := &models.Order{
		UserName:     req.UserName,
		OrderMode:    req.OrderMode,
		OrderStatus:  models.OrderStatusPlaced,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		DeliveryDate: now.Add(deliveryLeadTime),
	}

	for _, line := range req.Items {
		var book models.Book
		if err := tx.Preload("Author").Where("id = ?", line.BookID).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("Book not found.")
			}
			return nil, err
		}

		remaining := book.Quantity - line.Quantity
		if remaining < 0 {
			return nil, badRequest("Insufficient stock for book: %s", book.Name)
		}
		if err := tx.Model(&book).Update("quantity", remaining).Error; err != nil {
			return nil, err
		}

		authorName := "Unknown"
		if book.Author != nil {
			authorName = book.Author.Name
		}
		item := models.OrderItem{
			BookID:     book.ID,
			BookName:   book.Name,
			AuthorName: authorName,
			Quantity:   line.Quantity,
			UnitPrice:  book.Price,
			Subtotal:   book.Price * float64(line.Quantity),
		}
		order.Total += item.Subtotal
		order.Items = append(order.Items, item)
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, err
	}
	order.User = models.UserRef{ID: userID}
	return order, nil
}

func (s *Server) placeOrder(c *gin.Context) {
	var req OrderRequest
	if !s.bindJSON(c, &req) {
		return
	}
	userID, ok := orderOwner(c, &req)
	if !ok {
		return
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.createOrder(tx, userID, &req)
		return err
	})
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	s.logger.Info().Uint("order_id", order.ID).Uint("user_id", userID).Float64("total", order.Total).Msg("Order placed")
	c.JSON(http.StatusOK, order)
}

func (s *Server) ordersByUser(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok || !requireSelf(c, userID) {
		return
	}
	orders := []models.Order{}
	if err := s.db.Preload("Items").Where("user_id = ?", userID).Order("id").Find(&orders).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// loadOrder loads an order with its items, checking the caller may see it
func (s *Server) loadOrder(c *gin.Context, tx *gorm.DB, param string) (*models.Order, bool) {
	id, ok := idParam(c, param)
	if !ok {
		return nil, false
	}
	var order models.Order
	if err := models.FindByIDWithPreload(tx, id, &order, "Items"); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "Order not found with id: "+c.Param(param), nil)
			return nil, false
		}
		s.writeDBError(c, err, "")
		return nil, false
	}
	if !requireSelf(c, order.UserID) {
		return nil, false
	}
	return &order, true
}

// OrderUpdateRequest carries the editable delivery details of an order
type OrderUpdateRequest struct {
	UserName     *string `json:"userName"`
	Address      *string `json:"address"`
	PhoneNumber  *string `json:"phoneNumber"`
	DeliveryDate *string `json:"deliveryDate"`
}

func (s *Server) editOrder(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}
	var req OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if req.UserName != nil {
		order.UserName = *req.UserName
	}
	if req.Address != nil {
		order.Address = *req.Address
	}
	if req.PhoneNumber != nil {
		order.PhoneNumber = *req.PhoneNumber
	}
	if req.DeliveryDate != nil && *req.DeliveryDate != "" {
		date, err := parseLocalTime(*req.DeliveryDate)
		if err != nil {
			writeError(c, http.StatusBadRequest, "Invalid delivery date", nil)
			return
		}
		order.DeliveryDate = date
	}
	order.UpdatedAt = s.now()

	if err := s.db.Omit("Items").Save(order).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, order)
}

// restoreStock puts quantity back on bookID; a deleted book is skipped
func restoreStock(tx *gorm.DB, bookID uint, quantity int) error {
	return tx.Model(&models.Book{}).Where("id = ?", bookID).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

func (s *Server) removeOrder(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := restoreStock(tx, item.BookID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order removed successfully"})
}

func (s *Server) removeOrderItem(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}

	idx := -1
	for i := range order.Items {
		if order.Items[i].BookID == bookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(c, http.StatusNotFound, fmt.Sprintf("Order item not found for bookId: %d", bookID), nil)
		return
	}
	removed := order.Items[idx]
	remaining := append(order.Items[:idx:idx], order.Items[idx+1:]...)

	message := "Item removed from order"
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := restoreStock(tx, removed.BookID, removed.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&models.OrderItem{}, removed.ID).Error; err != nil {
			return err
		}
		if len(remaining) == 0 {
			message = "Order removed as it has no items left"
			return tx.Delete(&models.Order{}, order.ID).Error
		}

		var total float64
		for _, item := range remaining {
			total += item.Subtotal
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"total": total, "updated_at": s.now()}).Error
	})
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ReviewRequest rates a book in an order
type ReviewRequest struct {
	Review string   `json:"review"`
	Rating *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (s *Server) addReview(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}
	var req ReviewRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var item *models.OrderItem
	for i := range order.Items {
		if order.Items[i].BookID == bookID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		writeError(c, http.StatusNotFound, fmt.Sprintf("Order item not found for bookId: %d", bookID), nil)
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := models.FindByID(tx, bookID, &book); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Book not found.")
			}
			return err
		}

		item.Review = req.Review
		item.Rating = req.Rating
		if err := tx.Save(item).Error; err != nil {
			return err
		}

		if req.Review != "" || req.Rating != nil {
			book.Reviews = append(book.Reviews, models.Review{Comment: req.Review, Rating: req.Rating})
			return tx.Model(&book).Select("reviews").Updates(&book).Error
		}
		return nil
	})
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// printOrder returns an order for invoicing; only delivered orders qualify
func (s *Server) printOrder(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}
	if c.Param("status") != models.OrderStatusDelivered || order.OrderStatus != models.OrderStatusDelivered {
		writeError(c, http.StatusBadRequest, "Only delivered orders can be printed", nil)
		return
	}
	c.JSON(http.StatusOK, order)
}
