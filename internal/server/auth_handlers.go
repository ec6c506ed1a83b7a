package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookify-dev/bookify/internal/auth"
	"github.com/bookify-dev/bookify/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the account's role
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserIDResponse answers a lookup by email
type UserIDResponse struct {
	UserID uint `json:"userId"`
}

// bindAuthJSON validates like bindJSON but answers failures with a bare list
// of messages, the way the auth endpoints report them
func (s *Server) bindAuthJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, []string{"Invalid request body"})
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		c.JSON(http.StatusBadRequest, sortedMessages(validationMessages(err)))
		return false
	}
	return true
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !s.bindAuthJSON(c, &req) {
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeText(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		writeError(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		writeText(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		writeError(c, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}

	s.logger.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: token, Role: user.Role})
}

func (s *Server) register(c *gin.Context) {
	s.createAccount(c, models.RoleUser, "User registered successfully")
}

// registerAdmin creates the first admin; later calls are refused
func (s *Server) registerAdmin(c *gin.Context) {
	s.createAccount(c, models.RoleAdmin, "Admin registered successfully")
}

func (s *Server) createAccount(c *gin.Context, role, confirmation string) {
	var req RegisterRequest
	if !s.bindAuthJSON(c, &req) {
		return
	}

	if role == models.RoleAdmin {
		var admins int64
		if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			s.writeDBError(c, err, "")
			return
		}
		if admins > 0 {
			writeText(c, http.StatusForbidden, "Admin already exists")
			return
		}
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	if existing > 0 {
		writeText(c, http.StatusBadRequest, "Email already in use")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		writeError(c, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		writeError(c, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}

	s.logger.Info().Uint("user_id", user.ID).Str("email", user.Email).Str("role", role).Msg("Account created")
	writeText(c, http.StatusOK, confirmation)
}

// forgotPassword issues a reset token. There is no mailer; the token is
// logged so it can be used against reset-password.
func (s *Server) forgotPassword(c *gin.Context) {
	email := c.Query("email")

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "User not found with email: "+email, nil)
			return
		}
		s.writeDBError(c, err, "")
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to send reset email", nil)
		return
	}
	user.ResetToken = hex.EncodeToString(buf)
	if err := s.db.Model(&user).Update("reset_token", user.ResetToken).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	s.logger.Info().Str("email", email).Str("reset_token", user.ResetToken).Msg("Password reset requested")
	writeText(c, http.StatusOK, "Password reset email sent successfully")
}

func (s *Server) resetPassword(c *gin.Context) {
	token := c.Query("token")
	newPassword := c.Query("newPassword")
	if token == "" {
		writeError(c, http.StatusBadRequest, "Invalid token", nil)
		return
	}

	var user models.User
	if err := s.db.Where("reset_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusBadRequest, "Invalid token", nil)
			return
		}
		s.writeDBError(c, err, "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to reset password", nil)
		return
	}
	if err := s.db.Model(&user).Updates(map[string]any{"password_hash": hash, "reset_token": ""}).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}

	writeText(c, http.StatusOK, "Password reset successfully")
}

func (s *Server) userIDByEmail(c *gin.Context) {
	var user models.User
	if err := s.db.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeText(c, http.StatusNotFound, "User not found")
			return
		}
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, UserIDResponse{UserID: user.ID})
}

func (s *Server) bookNames(c *gin.Context) {
	var names []string
	if err := s.db.Model(&models.Book{}).Pluck("name", &names).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	sortFold(names)
	c.JSON(http.StatusOK, names)
}

func (s *Server) authorNames(c *gin.Context) {
	var names []string
	if err := s.db.Model(&models.Author{}).Pluck("name", &names).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	sortFold(names)
	c.JSON(http.StatusOK, names)
}

// sortFold sorts case-insensitively
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

func (s *Server) getProfile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok || !requireSelf(c, id) {
		return
	}

	var user models.User
	if err := models.FindByID(s.db, id, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeText(c, http.StatusNotFound, "User not found")
			return
		}
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, user)
}

// profileUpdate is the `value` part of a profile update
type profileUpdate struct {
	Name            string `json:"name"`
	Gender          string `json:"gender"`
	Address         string `json:"address"`
	FavouriteBook   string `json:"favouriteBook"`
	FavouriteAuthor string `json:"favouriteAuthor"`
}

func (s *Server) updateProfile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok || !requireSelf(c, id) {
		return
	}

	var user models.User
	if err := models.FindByID(s.db, id, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeText(c, http.StatusNotFound, "User not found")
			return
		}
		s.writeDBError(c, err, "")
		return
	}

	var in profileUpdate
	if !s.bindValuePart(c, &in) {
		return
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	user.Gender = in.Gender
	user.Address = in.Address
	user.FavouriteBook = in.FavouriteBook
	user.FavouriteAuthor = in.FavouriteAuthor

	if fh := formFile(c, "file"); fh != nil {
		url, err := s.uploads.save(fh, "profile-")
		if err != nil {
			writeError(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
			return
		}
		s.uploads.delete(user.ImageURL)
		user.ImageURL = url
	}

	if err := s.db.Save(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update profile")
		writeText(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		s.writeDBError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}
