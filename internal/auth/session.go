package auth

// SessionData represents the authenticated account for a request
type SessionData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the account has the admin role
func (s *SessionData) IsAdmin() bool {
	return s.Role == "ROLE_ADMIN"
}
