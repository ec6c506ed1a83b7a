package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

const currencyINR = "INR"

// SignPayment computes the gateway signature of a payment: the hex HMAC-SHA256
// of "<orderID>|<paymentID>" keyed with the key secret
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentData is what the payment widget returns on success
type PaymentData struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (s *Server) verifySignature(p PaymentData) bool {
	if p.OrderID == "" || p.PaymentID == "" || p.Signature == "" {
		return false
	}
	expected := SignPayment(s.config.PaymentKeySecret, p.OrderID, p.PaymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(p.Signature)))
}

// gatewayID mints a gateway-style identifier such as order_01j9...
func gatewayID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String()[:14])
}

// paise converts rupees to the smallest currency unit
func paise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

func (s *Server) paymentKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": s.config.PaymentKeyID})
}

// GatewayOrderRequest asks for a gateway order of Amount rupees
type GatewayOrderRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// GatewayOrder mirrors the payment gateway's order entity
type GatewayOrder struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	AmountDue int64  `json:"amount_due"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) createGatewayOrder(c *gin.Context) {
	var req GatewayOrderRequest
	if !s.bindJSON(c, &req) {
		return
	}
	now := s.now()
	amount := paise(req.Amount)
	order := GatewayOrder{
		ID:        gatewayID("order"),
		Entity:    "order",
		Amount:    amount,
		AmountDue: amount,
		Currency:  currencyINR,
		Receipt:   fmt.Sprintf("txn_%d", now.UnixMilli()),
		Status:    "created",
		CreatedAt: now.Unix(),
	}
	s.logger.Info().Str("gateway_order_id", order.ID).Int64("amount", amount).Msg("Gateway order created")
	c.JSON(http.StatusOK, order)
}

func (s *Server) verifyPayment(c *gin.Context) {
	var req PaymentData
	if err := c.ShouldBindJSON(&req); err != nil || !s.verifySignature(req) {
		writeError(c, http.StatusBadRequest, "Invalid Razorpay payment signature.", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PaidOrderRequest is an order paid through the gateway
type PaidOrderRequest struct {
	Order       OrderRequest `json:"order"`
	PaymentData PaymentData  `json:"paymentData"`
}

func (s *Server) placePaidOrder(c *gin.Context) {
	var req PaidOrderRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.verifySignature(req.PaymentData) {
		writeError(c, http.StatusBadRequest, "Invalid Razorpay payment signature.", nil)
		return
	}
	userID, ok := orderOwner(c, &req.Order)
	if !ok {
		return
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.createOrder(tx, userID, &req.Order)
		if err != nil {
			return err
		}
		return tx.Create(&models.PaymentRecord{
			OrderID:           order.ID,
			RazorpayOrderID:   req.PaymentData.OrderID,
			RazorpayPaymentID: req.PaymentData.PaymentID,
			RazorpaySignature: req.PaymentData.Signature,
		}).Error
	})
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	s.logger.Info().
		Uint("order_id", order.ID).
		Str("payment_id", req.PaymentData.PaymentID).
		Float64("total", order.Total).
		Msg("Paid order placed")
	c.JSON(http.StatusOK, order)
}

func (s *Server) findPaymentRecord(c *gin.Context, orderID uint) (*models.PaymentRecord, bool) {
	var record models.PaymentRecord
	if err := s.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, fmt.Sprintf("Payment info not found for order ID: %d", orderID), nil)
			return nil, false
		}
		s.writeDBError(c, err, "")
		return nil, false
	}
	return &record, true
}

func (s *Server) paymentInfo(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "orderId")
	if !ok {
		return
	}
	if record, ok := s.findPaymentRecord(c, order.ID); ok {
		c.JSON(http.StatusOK, record)
	}
}

func (s *Server) paymentInfoAdmin(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if record, ok := s.findPaymentRecord(c, id); ok {
		c.JSON(http.StatusOK, record)
	}
}
