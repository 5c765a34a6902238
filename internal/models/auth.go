package models

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Role          string `json:"role"`
	LedgerAccount string `json:"ledgerAccount" binding:"required"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued JWT
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
