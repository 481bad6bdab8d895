package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/travel-approval/internal/api/http"
	"github.com/spec-kit/travel-approval/internal/api/http/handlers"
	"github.com/spec-kit/travel-approval/internal/auth"
	"github.com/spec-kit/travel-approval/internal/config"
	"github.com/spec-kit/travel-approval/internal/domain"
	"github.com/spec-kit/travel-approval/internal/service"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newRefreshApp(t *testing.T) (*fiber.App, *service.AuthService) {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
	}}
	repo := &fakeUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Name: "Alice Ferraz", Email: "alice@example.com", Role: domain.RoleUser},
	}}
	authService := service.NewAuthService(cfg, repo, nil)
	usersHandler := handlers.NewUsersHandler(authService)
	middleware := auth.NewAuthMiddleware(authService.TokenManager(), repo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Post("/api/auth/refresh", middleware.Handle, usersHandler.Refresh)
	return app, authService
}

func TestRefreshReturnsFreshTokenForBearer(t *testing.T) {
	app, authService := newRefreshApp(t)

	token, _, err := authService.TokenManager().GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-1", body.Data.User.ID)

	claims, err := authService.TokenManager().ParseToken(body.Data.Auth.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRefreshWithoutBearerIsUnauthorized(t *testing.T) {
	app, _ := newRefreshApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/auth/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}
