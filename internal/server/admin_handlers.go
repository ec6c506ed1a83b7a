package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

// orderStatuses are the statuses an admin may set on an order
var orderStatuses = map[string]bool{
	"Placed":           true,
	"Processing":       true,
	"Shipped":          true,
	"Out for Delivery": true,
	"Delivered":        true,
	"Cancelled":        true,
}

var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

// parseLocalTime parses the zone-less date-times the client sends, in the
// server's local zone
func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}

// localTime is a request timestamp in any of localTimeLayouts
type localTime struct {
	time.Time
}

func (t *localTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseLocalTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (s *Server) allOrders(c *gin.Context) {
	orders := []models.Order{}
	if err := s.db.Preload("Items").Order("id").Find(&orders).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// OrderStatusRequest sets an order's status
type OrderStatusRequest struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	order, ok := s.loadOrder(c, s.db, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !orderStatuses[req.OrderStatus] {
		writeError(c, http.StatusBadRequest, "Invalid order status: "+req.OrderStatus, nil)
		return
	}

	order.OrderStatus = req.OrderStatus
	order.UpdatedAt = s.now()
	if err := s.db.Omit("Items").Save(order).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	s.logger.Info().Uint("order_id", order.ID).Str("status", order.OrderStatus).Msg("Order status updated")
	c.JSON(http.StatusOK, order)
}

// OrderStats is the dashboard summary
type OrderStats struct {
	TodayCount   int64          `json:"todayCount"`
	TotalCount   int64          `json:"totalCount"`
	TodayTotal   float64        `json:"todayTotal"`
	TotalAmount  float64        `json:"totalAmount"`
	RecentOrders []models.Order `json:"recentOrders"`
}

// RangeStats summarises the orders in a window
type RangeStats struct {
	OrderCount int64   `json:"orderCount"`
	OrderTotal float64 `json:"orderTotal"`
}

// sumOrders counts and totals the orders matched by query
func sumOrders(query *gorm.DB) (RangeStats, error) {
	var row struct {
		Count int64
		Total float64
	}
	err := query.Model(&models.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Scan(&row).Error
	return RangeStats{OrderCount: row.Count, OrderTotal: row.Total}, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *Server) orderStats(c *gin.Context) {
	today, err := sumOrders(s.db.Where("created_at >= ?", startOfDay(s.now())))
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	all, err := sumOrders(s.db)
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}

	recent := []models.Order{}
	if err := s.db.Preload("Items").Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, OrderStats{
		TodayCount:   today.OrderCount,
		TotalCount:   all.OrderCount,
		TodayTotal:   today.OrderTotal,
		TotalAmount:  all.OrderTotal,
		RecentOrders: recent,
	})
}

func (s *Server) writeRangeStats(c *gin.Context, start, end time.Time) {
	stats, err := sumOrders(s.db.Where("created_at BETWEEN ? AND ?", start, end))
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatsRangeRequest bounds a range-stats query
type StatsRangeRequest struct {
	StartDate localTime `json:"startDate"`
	EndDate   localTime `json:"endDate"`
}

func (s *Server) orderStatsByRange(c *gin.Context) {
	var req StatsRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid date range", nil)
		return
	}
	if req.EndDate.Before(req.StartDate.Time) {
		writeError(c, http.StatusBadRequest, "End date must not be before start date", nil)
		return
	}
	s.writeRangeStats(c, req.StartDate.Time, req.EndDate.Time)
}

// weeklyStats covers Monday 00:00 through Sunday 23:59:59 of the current week
func (s *Server) weeklyStats(c *gin.Context) {
	today := startOfDay(s.now())
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	s.writeRangeStats(c, start, end)
}

// monthlyStats covers the current calendar month
func (s *Server) monthlyStats(c *gin.Context) {
	today := startOfDay(s.now())
	start := today.AddDate(0, 0, 1-today.Day())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	s.writeRangeStats(c, start, end)
}
