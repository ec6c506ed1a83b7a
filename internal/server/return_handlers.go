package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

// Return request types
const (
	returnTypeReturn      = "RETURN"
	returnTypeReplacement = "REPLACEMENT"
)

// ReturnRequestInput is the `value` part of a return request create or edit.
// Pointer fields left out of an edit keep their stored value.
type ReturnRequestInput struct {
	UserID          uint       `json:"userId"`
	OrderID         uint       `json:"orderId"`
	BookID          uint       `json:"bookId"`
	BookTitle       string     `json:"bookTitle"`
	BookAuthor      string     `json:"bookAuthor"`
	Quantity        int        `json:"quantity"`
	Type            string     `json:"type"`
	Reason          *string    `json:"reason"`
	CustomerName    *string    `json:"customerName"`
	CustomerAddress *string    `json:"customerAddress"`
	CustomerPhone   *string    `json:"customerPhone"`
	ImageURLs       []string   `json:"imageUrls"`
	DeliveryDate    *localTime `json:"deliveryDate"`
}

func findOrderItem(order *models.Order, bookID uint) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].BookID == bookID {
			return &order.Items[i]
		}
	}
	return nil
}

func (s *Server) saveReturnImages(c *gin.Context, rr *models.ReturnRequest) error {
	for _, fh := range formFiles(c, "images") {
		prefix := fmt.Sprintf("user-%d_order-%d_item-%d_", rr.UserID, rr.OrderID, rr.BookID)
		url, err := s.uploads.save(fh, prefix)
		if err != nil {
			return &requestError{status: http.StatusRequestEntityTooLarge, message: err.Error()}
		}
		rr.ImageURLs = append(rr.ImageURLs, url)
	}
	return nil
}

func (s *Server) createReturnRequest(c *gin.Context) {
	var in ReturnRequestInput
	if !s.bindValuePart(c, &in) {
		return
	}
	sessionData, _ := GetSessionData(c)
	if in.UserID == 0 {
		in.UserID = sessionData.UserID
	}
	if !requireSelf(c, in.UserID) {
		return
	}

	rrType := strings.ToUpper(in.Type)
	if rrType != returnTypeReturn && rrType != returnTypeReplacement {
		writeError(c, http.StatusBadRequest, "Type must be RETURN or REPLACEMENT", nil)
		return
	}

	var order models.Order
	if err := models.FindByIDWithPreload(s.db, in.OrderID, &order, "Items"); err != nil {
		s.writeDBError(c, err, "Order not found")
		return
	}
	item := findOrderItem(&order, in.BookID)
	if item == nil {
		writeError(c, http.StatusBadRequest, "Book not found in order", nil)
		return
	}

	var active int64
	err := s.db.Model(&models.ReturnRequest{}).
		Where("order_id = ? AND book_id = ? AND status IN ?", in.OrderID, in.BookID,
			[]string{models.ReturnStatusPending, models.ReturnStatusApproved}).
		Count(&active).Error
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if active > 0 {
		writeError(c, http.StatusBadRequest, "You already have an active return/replacement request for this book.", nil)
		return
	}

	if in.Quantity <= 0 {
		writeError(c, http.StatusBadRequest, "Quantity must be greater than zero", nil)
		return
	}
	if in.Quantity > item.Quantity {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Quantity cannot exceed ordered quantity (%d)", item.Quantity), nil)
		return
	}

	now := s.now()
	delivery := now.Add(deliveryLeadTime)
	if in.DeliveryDate != nil {
		delivery = in.DeliveryDate.Time
	}
	reason := ""
	if in.Reason != nil {
		reason = *in.Reason
	}
	title, author := in.BookTitle, in.BookAuthor
	if title == "" {
		title = item.BookName
	}
	if author == "" {
		author = item.AuthorName
	}

	rr := models.ReturnRequest{
		UserID:          in.UserID,
		OrderID:         in.OrderID,
		BookID:          in.BookID,
		BookTitle:       title,
		BookAuthor:      author,
		Quantity:        in.Quantity,
		Type:            rrType,
		Reason:          reason,
		CustomerName:    order.UserName,
		CustomerAddress: order.Address,
		CustomerPhone:   order.PhoneNumber,
		Status:          models.ReturnStatusPending,
		RequestedDate:   &now,
		DeliveryDate:    &delivery,
		ImageURLs:       []string{},
	}
	if err := s.saveReturnImages(c, &rr); err != nil {
		s.writeFailure(c, err)
		return
	}

	if err := s.db.Create(&rr).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	s.logger.Info().Uint("return_id", rr.ID).Uint("order_id", rr.OrderID).Str("type", rr.Type).Msg("Return request filed")
	c.JSON(http.StatusOK, rr)
}

func (s *Server) returnRequestsByUser(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok || !requireSelf(c, userID) {
		return
	}
	reqs := []models.ReturnRequest{}
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&reqs).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (s *Server) loadReturnRequest(c *gin.Context, param string) (*models.ReturnRequest, bool) {
	id, ok := idParam(c, param)
	if !ok {
		return nil, false
	}
	var rr models.ReturnRequest
	if err := models.FindByID(s.db, id, &rr); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "Return/Replacement request not found with ID: "+c.Param(param), nil)
			return nil, false
		}
		s.writeDBError(c, err, "")
		return nil, false
	}
	if !requireSelf(c, rr.UserID) {
		return nil, false
	}
	return &rr, true
}

func (s *Server) getReturnRequest(c *gin.Context) {
	if rr, ok := s.loadReturnRequest(c, "id"); ok {
		c.JSON(http.StatusOK, rr)
	}
}

func (s *Server) editReturnRequest(c *gin.Context) {
	rr, ok := s.loadReturnRequest(c, "id")
	if !ok {
		return
	}
	var in ReturnRequestInput
	if !s.bindValuePart(c, &in) {
		return
	}

	if in.CustomerName != nil {
		rr.CustomerName = *in.CustomerName
	}
	if in.CustomerAddress != nil {
		rr.CustomerAddress = *in.CustomerAddress
	}
	if in.CustomerPhone != nil {
		rr.CustomerPhone = *in.CustomerPhone
	}
	if in.Reason != nil {
		rr.Reason = *in.Reason
	}
	if in.DeliveryDate != nil {
		d := in.DeliveryDate.Time
		rr.DeliveryDate = &d
	}

	// Images dropped from the list are deleted; uploads are appended
	if in.ImageURLs != nil {
		for _, url := range rr.ImageURLs {
			if !slices.Contains(in.ImageURLs, url) {
				s.uploads.delete(url)
			}
		}
		rr.ImageURLs = slices.Clone(in.ImageURLs)
	}
	if err := s.saveReturnImages(c, rr); err != nil {
		s.writeFailure(c, err)
		return
	}

	if err := s.db.Save(rr).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (s *Server) deleteReturnRequest(c *gin.Context) {
	rr, ok := s.loadReturnRequest(c, "id")
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// An approved return already took its quantity off the order line
		if rr.Type == returnTypeReturn && rr.Status == models.ReturnStatusApproved {
			err := tx.Model(&models.OrderItem{}).
				Where("order_id = ? AND book_id = ?", rr.OrderID, rr.BookID).
				Update("quantity", gorm.Expr("quantity + ?", rr.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(rr).Error
	})
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	for _, url := range rr.ImageURLs {
		s.uploads.delete(url)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) allReturnRequests(c *gin.Context) {
	reqs := []models.ReturnRequest{}
	if err := s.db.Order("id").Find(&reqs).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (s *Server) returnRequestsByStatus(c *gin.Context) {
	reqs := []models.ReturnRequest{}
	status := strings.ToUpper(c.Param("status"))
	if err := s.db.Where("status = ?", status).Order("id").Find(&reqs).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// updateReturnStatus records an admin decision. Approval takes the quantity
// off the order line; an approved replacement also ships new stock.
func (s *Server) updateReturnStatus(c *gin.Context) {
	rr, ok := s.loadReturnRequest(c, "id")
	if !ok {
		return
	}
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status == "" {
		writeError(c, http.StatusBadRequest, "Status is required", nil)
		return
	}
	if rr.Status == models.ReturnStatusApproved && status == models.ReturnStatusApproved {
		c.JSON(http.StatusOK, rr)
		return
	}

	now := s.now()
	rr.Status = status
	rr.ProcessedDate = &now

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if status == models.ReturnStatusApproved {
			if err := applyApproval(tx, rr); err != nil {
				return err
			}
			if rr.Type == returnTypeReplacement {
				err := tx.Model(&models.Book{}).Where("id = ?", rr.BookID).
					Update("quantity", gorm.Expr("MAX(quantity - ?, 0)", rr.Quantity)).Error
				if err != nil {
					return err
				}
				delivery := now.Add(deliveryLeadTime)
				rr.DeliveryDate = &delivery
			}
		}
		return tx.Save(rr).Error
	})
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	s.logger.Info().Uint("return_id", rr.ID).Str("status", rr.Status).Msg("Return request updated")
	c.JSON(http.StatusOK, rr)
}

// applyApproval reduces the order line by the returned quantity and
// recalculates the order total
func applyApproval(tx *gorm.DB, rr *models.ReturnRequest) error {
	var order models.Order
	if err := models.FindByIDWithPreload(tx, rr.OrderID, &order, "Items"); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Order not found")
		}
		return err
	}

	var total float64
	for i := range order.Items {
		item := &order.Items[i]
		if item.BookID == rr.BookID {
			item.Quantity = max(item.Quantity-rr.Quantity, 0)
			item.Subtotal = item.UnitPrice * float64(item.Quantity)
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		total += item.Subtotal
	}

	return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("total", total).Error
}

// Refund mirrors the payment gateway's refund entity
type Refund struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) refundReturnRequest(c *gin.Context) {
	rr, ok := s.loadReturnRequest(c, "id")
	if !ok {
		return
	}
	if rr.Status == models.ReturnStatusRefunded {
		writeError(c, http.StatusBadRequest, "Request already refunded.", nil)
		return
	}
	if rr.Status != models.ReturnStatusApproved {
		writeError(c, http.StatusBadRequest, "Return must be approved before refunding.", nil)
		return
	}

	record, ok := s.findPaymentRecord(c, rr.OrderID)
	if !ok {
		return
	}

	var order models.Order
	if err := models.FindByIDWithPreload(s.db, rr.OrderID, &order, "Items"); err != nil {
		s.writeDBError(c, err, "Order not found")
		return
	}
	item := findOrderItem(&order, rr.BookID)
	if item == nil {
		writeError(c, http.StatusBadRequest, "Book not found in order", nil)
		return
	}

	amount := math.Round(float64(rr.Quantity)*item.UnitPrice*100) / 100
	now := s.now()
	rr.Status = models.ReturnStatusRefunded
	rr.RefundedAmount = &amount
	rr.ProcessedDate = &now
	rr.PaymentID = record.RazorpayPaymentID
	if err := s.db.Save(rr).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	refund := Refund{
		ID:        gatewayID("rfnd"),
		Entity:    "refund",
		Amount:    paise(amount),
		Currency:  currencyINR,
		PaymentID: record.RazorpayPaymentID,
		Status:    "processed",
		CreatedAt: now.Unix(),
	}
	s.logger.Info().Uint("return_id", rr.ID).Str("refund_id", refund.ID).Int64("amount", refund.Amount).Msg("Refund issued")
	c.JSON(http.StatusOK, refund)
}
