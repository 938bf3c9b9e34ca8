package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-scheduler/config"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newAuth() (*AuthMiddleware, *jwt.JWTService) {
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour})
	return NewAuthMiddleware(svc, logrus.New()), svc
}

func TestAuthenticate_PutsActorInContext(t *testing.T) {
	auth, svc := newAuth()
	userID := uuid.New()
	token, _, err := svc.GenerateAccessToken(userID, string(entity.RoleDoctor))
	assert.NoError(t, err)

	var got entity.Actor
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetActorFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, entity.Actor{ID: userID, Role: entity.RoleDoctor}, got)
}

func TestAuthenticate_Rejections(t *testing.T) {
	auth, svc := newAuth()
	adminToken, _, _ := svc.GenerateAccessToken(uuid.New(), "ADMIN")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"unknown role", "Bearer " + adminToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth, svc := newAuth()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := auth.Authenticate(RequirePatient(next))

	for role, want := range map[entity.Role]int{
		entity.RolePatient: http.StatusNoContent,
		entity.RoleDoctor:  http.StatusForbidden,
	} {
		token, _, err := svc.GenerateAccessToken(uuid.New(), string(role))
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, string(role))
	}

	// no auth context at all
	rec := httptest.NewRecorder()
	RequireRole(entity.RoleDoctor)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
