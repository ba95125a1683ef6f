package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quoteflow/config"
	"quoteflow/models"
)

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))

	config.AppConfig = config.Config{JWTSecret: "test-secret"}
	config.DB = db

	app := fiber.New()
	app.Post("/auth/login", Login)
	app.Post("/auth/refresh", RefreshToken)
	return app, db
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		Email:        "admin@quoteflow.io",
		PasswordHash: string(hash),
		Name:         "Admin",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLoginIssuesTokens(t *testing.T) {
	app, db := setupAuthApp(t)
	createTestUser(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "admin@quoteflow.io",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	// The refresh token is persisted for later revocation
	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", body["refresh_token"]).First(&stored).Error)
	assert.False(t, stored.Revoked)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, db := setupAuthApp(t)
	createTestUser(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "admin@quoteflow.io",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "nobody@quoteflow.io",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	app, db := setupAuthApp(t)
	user := createTestUser(t, db)
	require.NoError(t, db.Model(&user).Update("is_active", false).Error)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "admin@quoteflow.io",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRefreshRotatesToken(t *testing.T) {
	app, db := setupAuthApp(t)
	createTestUser(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "admin@quoteflow.io",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	oldRefresh := decodeBody(t, resp)["refresh_token"].(string)

	resp = doJSON(t, app, http.MethodPost, "/auth/refresh", map[string]interface{}{
		"refresh_token": oldRefresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["access_token"])
	newRefresh := body["refresh_token"].(string)
	assert.NotEqual(t, oldRefresh, newRefresh)

	// Old token is revoked and can no longer be replayed
	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", oldRefresh).First(&stored).Error)
	assert.True(t, stored.Revoked)

	resp = doJSON(t, app, http.MethodPost, "/auth/refresh", map[string]interface{}{
		"refresh_token": oldRefresh,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
