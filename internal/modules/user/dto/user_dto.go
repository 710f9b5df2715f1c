package dto

import (
	"time"

	"anoa.com/welfaredesk/internal/entity"
)

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthResponse struct {
	User      *entity.Account `json:"user"`
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// RegisterInput arrives as multipart form fields next to the image file.
type RegisterInput struct {
	Name       string `json:"name" form:"name" binding:"required,min=2,max=50"`
	Email      string `json:"email" form:"email" binding:"required,email,max=100"`
	Password   string `json:"password" form:"password" binding:"required,min=8,max=20,password"`
	Role       string `json:"role" form:"role" binding:"required,role"`
	Department string `json:"department" form:"department" binding:"omitempty,department"`
}

type EditUserInput struct {
	Name       *string `json:"name" form:"name" binding:"omitempty,min=2,max=50"`
	Email      *string `json:"email" form:"email" binding:"omitempty,email,max=100"`
	Password   *string `json:"password" form:"password" binding:"omitempty,min=8,max=20,password"`
	Role       *string `json:"role" form:"role" binding:"omitempty,role"`
	Department *string `json:"department" form:"department" binding:"omitempty,department_or_none"`
}

type UserFilter struct {
	Name       string `form:"name"`
	Email      string `form:"email" binding:"omitempty,email"`
	Role       string `form:"role" binding:"omitempty,role"`
	Department string `form:"department" binding:"omitempty,department"`
}
