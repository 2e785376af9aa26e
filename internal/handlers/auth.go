package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/config"
	"github.com/example/nepwork/internal/models"
	"github.com/example/nepwork/internal/utils"
	"github.com/example/nepwork/internal/validators"
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new account with email/password credentials.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validators.IsValidEmail(req.Email) {
		return apperrors.BadRequest("invalid email address")
	}

	if problems := validators.PasswordErrors(req.Password); len(problems) > 0 {
		return apperrors.BadRequest(strings.Join(problems, "; "))
	}

	role := models.RoleCustomer
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			return apperrors.BadRequest("invalid role")
		}
	}

	var existing models.User
	if err := h.db.First(&existing, "email = ?", req.Email).Error; err == nil {
		return apperrors.BadRequest("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	username := req.Username
	if username == "" {
		username = req.Email[:strings.Index(req.Email, "@")]
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        req.Email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    serializeUser(h.db, &user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing account.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthorized("invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return apperrors.Unauthorized("invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    serializeUser(h.db, &user),
	})
}

type syncRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Sync upserts a user from external auth data. Keyed by email and
// idempotent: repeating the same payload changes nothing. The configured
// admin email is force-elevated and an admin role is never downgraded.
func (h *AuthHandler) Sync(c *fiber.Ctx) error {
	var req syncRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.Email == "" {
		return apperrors.BadRequest("email required")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	created := false

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, "email = ?", email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{Email: email, Username: req.Username}
			if role := models.Role(req.Role); role.Valid() {
				user.Role = role
			}
			if h.cfg.AdminEmail != "" && email == h.cfg.AdminEmail {
				user.Role = models.RoleAdmin
			}
			created = true
			return tx.Create(&user).Error
		} else if err != nil {
			return err
		}

		changed := false
		if req.Username != "" && user.Username != req.Username {
			user.Username = req.Username
			changed = true
		}

		if h.cfg.AdminEmail != "" && email == h.cfg.AdminEmail {
			if user.Role != models.RoleAdmin {
				user.Role = models.RoleAdmin
				changed = true
			}
		} else if role := models.Role(req.Role); role.Valid() &&
			user.Role != models.RoleAdmin && user.Role != role {
			user.Role = role
			changed = true
		}

		if !changed {
			return nil
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User synced",
		"created": created,
	})
}

// serializeUser shapes a user for responses, including the derived
// KYC-verified flag.
func serializeUser(db *gorm.DB, user *models.User) fiber.Map {
	verified := false
	var kyc models.KYCVerification
	if err := db.First(&kyc, "user_id = ?", user.ID).Error; err == nil {
		verified = kyc.IsVerified()
	}

	return fiber.Map{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"display_name":    user.DisplayName,
		"phone_number":    user.PhoneNumber,
		"role":            user.Role,
		"avatar_url":      user.AvatarURL,
		"bio":             user.Bio,
		"is_kyc_verified": verified,
	}
}
