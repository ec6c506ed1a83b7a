package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

// userBookParams reads and authorizes the :userId path parameter and the
// second id parameter named by second
func userBookParams(c *gin.Context, second string) (userID, otherID uint, ok bool) {
	userID, ok = idParam(c, "userId")
	if !ok || !requireSelf(c, userID) {
		return 0, 0, false
	}
	otherID, ok = idParam(c, second)
	return userID, otherID, ok
}

func (s *Server) loadStockedBook(c *gin.Context, bookID uint) (*models.Book, bool) {
	var book models.Book
	if err := models.FindByIDWithPreload(s.db, bookID, &book, "Author"); err != nil {
		s.writeDBError(c, err, "Book not found")
		return nil, false
	}
	return &book, true
}

func (s *Server) addToCart(c *gin.Context) {
	userID, bookID, ok := userBookParams(c, "bookId")
	if !ok {
		return
	}
	book, ok := s.loadStockedBook(c, bookID)
	if !ok {
		return
	}

	var existing int64
	if err := s.db.Model(&models.CartItem{}).Where("user_id = ? AND book_id = ?", userID, bookID).Count(&existing).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if existing > 0 {
		writeText(c, http.StatusConflict, "Book already exists in cart")
		return
	}
	if book.Quantity <= 0 {
		writeError(c, http.StatusBadRequest, "Product is out of stock.", nil)
		return
	}

	item := models.CartItem{UserID: userID, BookID: bookID}
	if err := s.db.Create(&item).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	item.Book = *book
	c.JSON(http.StatusOK, item)
}

func (s *Server) getCart(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok || !requireSelf(c, userID) {
		return
	}
	items := []models.CartItem{}
	if err := s.db.Preload("Book.Author").Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getCartUserName(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	var user models.User
	if err := models.FindByID(s.db, userID, &user); err != nil {
		s.writeDBError(c, err, "User not found.")
		return
	}
	writeText(c, http.StatusOK, user.Name)
}

func (s *Server) removeFromCart(c *gin.Context) {
	userID, itemID, ok := userBookParams(c, "itemId")
	if !ok {
		return
	}
	res := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		s.writeDBError(c, res.Error, "")
		return
	}
	if res.RowsAffected == 0 {
		writeError(c, http.StatusNotFound, "Cart item not found.", nil)
		return
	}
	writeText(c, http.StatusOK, "Removed from cart")
}

func (s *Server) addToWishlist(c *gin.Context) {
	userID, bookID, ok := userBookParams(c, "bookId")
	if !ok {
		return
	}
	book, ok := s.loadStockedBook(c, bookID)
	if !ok {
		return
	}

	var existing models.WishlistItem
	err := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		writeText(c, http.StatusConflict, "Book already exists in wishlist")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.writeDBError(c, err, "")
		return
	}

	item := models.WishlistItem{UserID: userID, BookID: bookID}
	if err := s.db.Create(&item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to add book to wishlist")
		writeError(c, http.StatusInternalServerError, "Failed to add book to wishlist", nil)
		return
	}
	item.Book = *book
	c.JSON(http.StatusOK, item)
}

func (s *Server) getWishlist(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok || !requireSelf(c, userID) {
		return
	}
	items := []models.WishlistItem{}
	if err := s.db.Preload("Book.Author").Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) removeFromWishlist(c *gin.Context) {
	userID, itemID, ok := userBookParams(c, "itemId")
	if !ok {
		return
	}
	res := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		s.writeDBError(c, res.Error, "")
		return
	}
	if res.RowsAffected == 0 {
		writeError(c, http.StatusNotFound, "Wishlist item not found", nil)
		return
	}
	writeText(c, http.StatusOK, "Removed from wishlist")
}

func (s *Server) listCarts(c *gin.Context) {
	items := []models.CartItem{}
	if err := s.db.Preload("User").Preload("Book.Author").Order("id").Find(&items).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) listWishlists(c *gin.Context) {
	items := []models.WishlistItem{}
	if err := s.db.Preload("User").Preload("Book.Author").Order("id").Find(&items).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}
