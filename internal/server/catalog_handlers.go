package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/models"
)

// Page is a slice of a paginated listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// pageParams reads zero-based page and size query parameters
func pageParams(c *gin.Context, defaultSize int) (page, size int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err = strconv.Atoi(c.Query("size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	return page, size
}

// paginate runs query for one page, newest first
func paginate[T any](query *gorm.DB, page, size int, preloads ...string) (*Page[T], error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Model(new(T)).Count(&total).Error; err != nil {
		return nil, err
	}

	find := query
	for _, preload := range preloads {
		find = find.Preload(preload)
	}
	content := make([]T, 0, size)
	if err := find.Order("id DESC").Offset(page * size).Limit(size).Find(&content).Error; err != nil {
		return nil, err
	}

	return &Page[T]{
		Content:       content,
		TotalPages:    int(math.Ceil(float64(total) / float64(size))),
		TotalElements: total,
		Number:        page,
		Size:          size,
	}, nil
}

// AuthorRequest is the `value` part of an author create or update
type AuthorRequest struct {
	Name                 string   `json:"name" validate:"notblank,min=3,max=20"`
	Description          string   `json:"description" validate:"notblank,min=3"`
	Gender               string   `json:"gender" validate:"notblank"`
	ProgrammingLanguages []string `json:"programmingLanguages" validate:"min=1"`
}

// BookRequest is the `value` part of a book create or update
type BookRequest struct {
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description" validate:"notblank"`
	AuthorID    uint    `json:"authorId"`
	Price       float64 `json:"price" validate:"gt=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl"`
}

// validateValue answers validation failures of a multipart `value` part as a
// list of "field: message" strings
func (s *Server) validateValue(c *gin.Context, v any) bool {
	err := s.validator.Struct(v)
	if err == nil {
		return true
	}
	details := validationMessages(err)
	msgs := make([]string, 0, len(details))
	for _, field := range sortedKeys(details) {
		msgs = append(msgs, field+": "+details[field])
	}
	c.JSON(http.StatusBadRequest, msgs)
	return false
}

func (s *Server) withBookCounts(authors []models.Author) error {
	for i := range authors {
		if err := s.db.Model(&models.Book{}).Where("author_id = ?", authors[i].ID).Count(&authors[i].BookCount).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) listAuthors(c *gin.Context) {
	page, size := pageParams(c, 4)
	result, err := paginate[models.Author](s.db, page, size)
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if err := s.withBookCounts(result.Content); err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) searchAuthors(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		writeError(c, http.StatusBadRequest, "Search name cannot be empty", nil)
		return
	}
	page, size := pageParams(c, 4)
	query := s.db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	result, err := paginate[models.Author](query, page, size)
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if err := s.withBookCounts(result.Content); err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, result)
}

type authorName struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (s *Server) authorIDNames(c *gin.Context) {
	names := []authorName{}
	if err := s.db.Model(&models.Author{}).Select("id", "name").Order("id").Scan(&names).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) getAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var author models.Author
	if err := models.FindByID(s.db, id, &author); err != nil {
		s.writeDBError(c, err, "Author not found")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) createAuthor(c *gin.Context) {
	var req AuthorRequest
	if !s.bindValuePart(c, &req) || !s.validateValue(c, &req) {
		return
	}

	fh := formFile(c, "file")
	if fh == nil {
		writeText(c, http.StatusBadRequest, "Image is required for new author")
		return
	}
	url, err := s.uploads.save(fh, "")
	if err != nil {
		writeError(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
		return
	}

	author := models.Author{
		Name:                 req.Name,
		Description:          req.Description,
		Gender:               req.Gender,
		ProgrammingLanguages: req.ProgrammingLanguages,
		ImageURL:             url,
	}
	if err := s.db.Create(&author).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) updateAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var author models.Author
	if err := models.FindByID(s.db, id, &author); err != nil {
		s.writeDBError(c, err, "Author not found")
		return
	}

	var req AuthorRequest
	if !s.bindValuePart(c, &req) || !s.validateValue(c, &req) {
		return
	}
	author.Name = req.Name
	author.Description = req.Description
	author.Gender = req.Gender
	author.ProgrammingLanguages = req.ProgrammingLanguages

	if fh := formFile(c, "file"); fh != nil {
		url, err := s.uploads.save(fh, "")
		if err != nil {
			writeError(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
			return
		}
		s.uploads.delete(author.ImageURL)
		author.ImageURL = url
	}

	if err := s.db.Save(&author).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) deleteAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var author models.Author
	if err := models.FindByID(s.db, id, &author); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeText(c, http.StatusNotFound, "Author not found with ID: "+c.Param("id"))
			return
		}
		s.writeDBError(c, err, "")
		return
	}

	var books int64
	if err := s.db.Model(&models.Book{}).Where("author_id = ?", id).Count(&books).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if books > 0 {
		writeText(c, http.StatusBadRequest, "Cannot delete author because it is referenced by books.")
		return
	}

	if err := s.db.Delete(&author).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	s.uploads.delete(author.ImageURL)
	writeText(c, http.StatusOK, "Author deleted successfully")
}

func (s *Server) listBooks(c *gin.Context) {
	page, size := pageParams(c, 8)
	s.writeBookPage(c, s.db, page, size)
}

func (s *Server) listUserBooks(c *gin.Context) {
	page, size := pageParams(c, 3)
	s.writeBookPage(c, s.db, page, size)
}

func (s *Server) searchBooks(c *gin.Context) {
	s.searchBookPage(c, 8)
}

func (s *Server) searchUserBooks(c *gin.Context) {
	s.searchBookPage(c, 3)
}

func (s *Server) searchBookPage(c *gin.Context, defaultSize int) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		writeError(c, http.StatusBadRequest, "Search name cannot be empty", nil)
		return
	}
	page, size := pageParams(c, defaultSize)
	s.writeBookPage(c, s.db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%"), page, size)
}

func (s *Server) writeBookPage(c *gin.Context, query *gorm.DB, page, size int) {
	result, err := paginate[models.Book](query, page, size, "Author")
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var book models.Book
	if err := models.FindByIDWithPreload(s.db, id, &book, "Author"); err != nil {
		s.writeDBError(c, err, "Book not found")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) createBook(c *gin.Context) {
	var req BookRequest
	if !s.bindValuePart(c, &req) || !s.validateValue(c, &req) {
		return
	}

	var author models.Author
	if err := models.FindByID(s.db, req.AuthorID, &author); err != nil {
		s.writeDBError(c, err, "Author not found")
		return
	}

	book := models.Book{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		AuthorID:    &author.ID,
		Author:      &author,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if fh := formFile(c, "file"); fh != nil {
		url, err := s.uploads.save(fh, "")
		if err != nil {
			writeError(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
			return
		}
		book.ImageURL = url
	}

	if err := s.db.Omit("Author").Create(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			writeError(c, http.StatusBadRequest, "Operation failed due to foreign key or unique constraint.", nil)
			return
		}
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (s *Server) updateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var book models.Book
	if err := models.FindByIDWithPreload(s.db, id, &book, "Author"); err != nil {
		s.writeDBError(c, err, "Book not found")
		return
	}

	var req BookRequest
	if !s.bindValuePart(c, &req) || !s.validateValue(c, &req) {
		return
	}

	book.Name = strings.TrimSpace(req.Name)
	book.Description = strings.TrimSpace(req.Description)
	book.Quantity = req.Quantity
	book.Price = req.Price

	if req.AuthorID != 0 {
		var author models.Author
		if err := models.FindByID(s.db, req.AuthorID, &author); err != nil {
			writeError(c, http.StatusBadRequest, "Invalid author ID", nil)
			return
		}
		book.AuthorID = &author.ID
		book.Author = &author
	}

	if fh := formFile(c, "file"); fh != nil {
		url, err := s.uploads.save(fh, "")
		if err != nil {
			writeError(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
			return
		}
		s.uploads.delete(book.ImageURL)
		book.ImageURL = url
	} else if req.ImageURL != "" {
		book.ImageURL = req.ImageURL
	}

	if err := s.db.Omit("Author").Save(&book).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var book models.Book
	if err := models.FindByID(s.db, id, &book); err != nil {
		s.writeDBError(c, err, "Book not found")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		s.writeDBError(c, err, "")
		return
	}
	s.uploads.delete(book.ImageURL)
	c.Status(http.StatusNoContent)
}
