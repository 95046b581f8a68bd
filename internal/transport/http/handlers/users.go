package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/transport/http/middleware"
	"github.com/IsbatBInHossain/bookstore-cms/internal/usecase"
)

// UserHandler exposes profile and administrative user endpoints.
type UserHandler struct {
	auth  *usecase.AuthService
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(auth *usecase.AuthService, users *usecase.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// RegisterRoutes binds user routes. Every route requires authentication; the
// administrative ones additionally require a USER permission grant.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireAuth(h.auth))

	r.GET("/me", h.me)
	r.PUT("/me", h.updateProfile)

	r.GET("",
		middleware.RequirePermission(domain.ActionRead, domain.SubjectUser),
		h.list)
	r.PUT("/:id/role",
		middleware.RequirePermission(domain.ActionUpdate, domain.SubjectUser),
		h.updateRole)
}

func (h *UserHandler) me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*user))
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, usecase.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User with given id not found"},
		}, http.StatusInternalServerError, "profile update failed")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*updated))
}

func (h *UserHandler) list(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "user listing failed"))
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: responses,
		Total: len(responses),
	})
}

func (h *UserHandler) updateRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	targetID := c.Param("id")

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	updated, err := h.users.UpdateRole(c.Request.Context(), actor.ID, targetID, domain.RoleName(req.Role))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "Invalid role"},
			{Err: usecase.ErrSelfRoleChange, Status: http.StatusForbidden, Message: "Changing your own role is not allowed"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User with given id not found"},
		}, http.StatusInternalServerError, "role update failed")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(*updated))
}
