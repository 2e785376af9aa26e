package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/config"
	"github.com/example/nepwork/internal/database"
	"github.com/example/nepwork/internal/models"
	"github.com/example/nepwork/internal/routes"
	"github.com/example/nepwork/internal/utils"
)

const testAdminEmail = "admin@nepwork.test"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, database.Migrate(db), "migrate schema")

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		AdminEmail:   testAdminEmail,
	}

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler})
	routes.Register(app, db, cfg)

	return app, db, cfg
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("Abcdef1!")
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, cfg *config.Config, email string) string {
	t.Helper()

	token, err := utils.GenerateToken(cfg.JWTSecret, email, cfg.TokenExpires)
	require.NoError(t, err)
	return token
}

func approveKYC(t *testing.T, db *gorm.DB, user *models.User, admin *models.User) {
	t.Helper()

	now := time.Now()
	record := models.KYCVerification{
		UserID:       user.ID,
		FullName:     user.Username,
		Status:       models.KYCApproved,
		VerifiedAt:   &now,
		VerifiedByID: &admin.ID,
	}
	require.NoError(t, db.Create(&record).Error)
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string) *models.ServiceCategory {
	t.Helper()

	category := &models.ServiceCategory{Name: name, Slug: slug}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createService(t *testing.T, db *gorm.DB, provider *models.User, category *models.ServiceCategory, title, slug string) *models.Service {
	t.Helper()

	service := &models.Service{
		ProviderID: provider.ID,
		CategoryID: category.ID,
		Title:      title,
		Slug:       slug,
		BasePrice:  100,
		IsActive:   true,
	}
	require.NoError(t, db.Create(service).Error)
	return service
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}

	return resp, parsed
}
