package dto

import (
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Surname       string      `json:"surname"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	HierarchyCode int         `json:"hierarchy_code"`
	DepartmentID  *int64      `json:"department_id,omitempty"`
}

// LoginResponse bundles the token with the resolved user.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Surname:       user.Surname,
		Email:         user.Email,
		Role:          user.Role,
		HierarchyCode: user.HierarchyCode,
		DepartmentID:  user.DepartmentID,
	}
}

// CreateUserRequest payload for chief-side user provisioning.
type CreateUserRequest struct {
	Name          string      `json:"name" validate:"required"`
	Surname       string      `json:"surname" validate:"required"`
	Email         string      `json:"email" validate:"required,email"`
	Password      string      `json:"password" validate:"required,min=8"`
	Role          domain.Role `json:"role" validate:"required,oneof=EMPLOYEE TECHNICIAN CHIEF"`
	HierarchyCode int         `json:"hierarchy_code" validate:"gte=0"`
	DepartmentID  *int64      `json:"department_id"`
}
