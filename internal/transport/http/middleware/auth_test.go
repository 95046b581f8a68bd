package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

type stubAuthenticator struct {
	user *domain.User
	err  error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ string) (*domain.User, error) {
	return s.user, s.err
}

func managerUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "manager@example.com",
		Role: &domain.Role{
			ID:   "role-manager",
			Name: domain.RoleManager,
			Permissions: []domain.Permission{
				{Action: domain.ActionCreate, Subject: domain.SubjectBook},
				{Action: domain.ActionRead, Subject: domain.SubjectUser},
			},
		},
	}
}

func newAuthRouter(auth Authenticator, action domain.PermissionAction, subject domain.PermissionSubject) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/guarded",
		RequireAuth(auth),
		RequirePermission(action, subject),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	return router
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{user: managerUser()}, domain.ActionRead, domain.SubjectUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{user: managerUser()}, domain.ActionRead, domain.SubjectUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{err: errors.New("invalid access token")}, domain.ActionRead, domain.SubjectUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequirePermissionGranted(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{user: managerUser()}, domain.ActionCreate, domain.SubjectBook)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermissionDenied(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{user: managerUser()}, domain.ActionDelete, domain.SubjectUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
