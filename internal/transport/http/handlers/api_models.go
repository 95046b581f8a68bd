package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/transport/http/middleware"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse builds an error payload carrying the request identifier.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		RequestID: middleware.GetRequestID(c),
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse bundles the user with the issued tokens.
type LoginResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// ProfileResponse is the embedded profile representation.
type ProfileResponse struct {
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// PermissionResponse is one (action, subject) grant.
type PermissionResponse struct {
	Action  string `json:"action"`
	Subject string `json:"subject"`
}

// UserResponse is the public user representation. The password hash never
// appears here.
type UserResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	Role        string               `json:"role"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
	Profile     *ProfileResponse     `json:"profile,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProfileUpdateRequest replaces the caller's profile fields.
type ProfileUpdateRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// RoleUpdateRequest assigns a role to a user.
type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

// UserListResponse wraps the administrative user listing.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-backend readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func toUserResponse(user domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.Role != nil {
		resp.Role = string(user.Role.Name)
		for _, permission := range user.Role.Permissions {
			resp.Permissions = append(resp.Permissions, PermissionResponse{
				Action:  string(permission.Action),
				Subject: string(permission.Subject),
			})
		}
	}

	if user.Profile != nil {
		resp.Profile = &ProfileResponse{
			FirstName: user.Profile.FirstName,
			LastName:  user.Profile.LastName,
			Phone:     user.Profile.Phone,
		}
	}

	return resp
}
