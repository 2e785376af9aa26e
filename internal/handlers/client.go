package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
)

// ClientHandler manages customer-side profile, preferences and favorites.
type ClientHandler struct {
	db *gorm.DB
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// GetProfile returns the caller's client profile, creating it on first
// access.
func (h *ClientHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var profile models.ClientProfile
	if err := h.db.Where(models.ClientProfile{UserID: user.ID}).
		FirstOrCreate(&profile).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type clientProfileRequest struct {
	PreferredLanguage  *string `json:"preferred_language"`
	EmailNotifications *bool   `json:"email_notifications"`
	SMSNotifications   *bool   `json:"sms_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
	DefaultLocation    *string `json:"default_location"`
	PreferredCurrency  *string `json:"preferred_currency"`
}

// UpdateProfile applies the provided profile fields.
func (h *ClientHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var profile models.ClientProfile
	if err := h.db.Where(models.ClientProfile{UserID: user.ID}).
		FirstOrCreate(&profile).Error; err != nil {
		return err
	}

	var req clientProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.PreferredLanguage != nil {
		updates["preferred_language"] = *req.PreferredLanguage
	}
	if req.EmailNotifications != nil {
		updates["email_notifications"] = *req.EmailNotifications
	}
	if req.SMSNotifications != nil {
		updates["sms_notifications"] = *req.SMSNotifications
	}
	if req.PushNotifications != nil {
		updates["push_notifications"] = *req.PushNotifications
	}
	if req.DefaultLocation != nil {
		updates["default_location"] = *req.DefaultLocation
	}
	if req.PreferredCurrency != nil {
		updates["preferred_currency"] = strings.ToUpper(*req.PreferredCurrency)
	}

	if len(updates) > 0 {
		if err := h.db.Model(&profile).Updates(updates).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

// GetPreferences returns the caller's search preferences, creating them
// on first access.
func (h *ClientHandler) GetPreferences(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var prefs models.ClientPreferences
	if err := h.db.Where(models.ClientPreferences{ClientID: user.ID}).
		FirstOrCreate(&prefs).Error; err != nil {
		return err
	}

	if err := h.db.Model(&prefs).Association("PreferredCategories").
		Find(&prefs.PreferredCategories); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": prefs})
}

type clientPreferencesRequest struct {
	DefaultSearchRadius  *int      `json:"default_search_radius"`
	MinPriceFilter       *float64  `json:"min_price_filter"`
	MaxPriceFilter       *float64  `json:"max_price_filter"`
	ItemsPerPage         *int      `json:"items_per_page"`
	PreferredCategoryIDs *[]string `json:"preferred_category_ids"`
}

// UpdatePreferences applies the provided preference fields, replacing
// the preferred-categories set when one is given.
func (h *ClientHandler) UpdatePreferences(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var prefs models.ClientPreferences
	if err := h.db.Where(models.ClientPreferences{ClientID: user.ID}).
		FirstOrCreate(&prefs).Error; err != nil {
		return err
	}

	var req clientPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.DefaultSearchRadius != nil {
		updates["default_search_radius"] = *req.DefaultSearchRadius
	}
	if req.MinPriceFilter != nil {
		updates["min_price_filter"] = *req.MinPriceFilter
	}
	if req.MaxPriceFilter != nil {
		updates["max_price_filter"] = *req.MaxPriceFilter
	}
	if req.ItemsPerPage != nil {
		updates["items_per_page"] = *req.ItemsPerPage
	}

	if len(updates) > 0 {
		if err := h.db.Model(&prefs).Updates(updates).Error; err != nil {
			return err
		}
	}

	if req.PreferredCategoryIDs != nil {
		var categories []models.ServiceCategory
		if len(*req.PreferredCategoryIDs) > 0 {
			ids := make([]uuid.UUID, 0, len(*req.PreferredCategoryIDs))
			for _, raw := range *req.PreferredCategoryIDs {
				id, err := uuid.Parse(raw)
				if err != nil {
					return apperrors.BadRequest("invalid category id")
				}
				ids = append(ids, id)
			}
			if err := h.db.Find(&categories, "id IN ?", ids).Error; err != nil {
				return err
			}
		}
		if err := h.db.Model(&prefs).Association("PreferredCategories").
			Replace(categories); err != nil {
			return err
		}
		prefs.PreferredCategories = categories
	}

	return c.JSON(fiber.Map{"success": true, "data": prefs})
}

// ListFavorites returns the caller's favorite services, newest first.
func (h *ClientHandler) ListFavorites(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var favorites []models.ClientFavorite
	if err := h.db.Preload("Service").
		Where("client_id = ?", user.ID).
		Order("created_at desc").
		Find(&favorites).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": favorites})
}

type favoriteRequest struct {
	ServiceID string `json:"service_id"`
}

// AddFavorite marks a service as a favorite. Adding the same service
// twice is a conflict; the composite unique index backs this up against
// races.
func (h *ClientHandler) AddFavorite(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return apperrors.BadRequest("invalid service_id")
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("service not found")
		}
		return err
	}

	var existing models.ClientFavorite
	if err := h.db.First(&existing, "client_id = ? AND service_id = ?", user.ID, serviceID).Error; err == nil {
		return apperrors.Conflict("service already in favorites")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	favorite := models.ClientFavorite{
		ClientID:  user.ID,
		ServiceID: serviceID,
	}
	if err := h.db.Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("service already in favorites")
		}
		return err
	}

	favorite.Service = &service
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": favorite})
}

// RemoveFavorite deletes one of the caller's favorites.
func (h *ClientHandler) RemoveFavorite(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.BadRequest("invalid id")
	}

	var favorite models.ClientFavorite
	if err := h.db.First(&favorite, "id = ? AND client_id = ?", id, user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("favorite not found")
		}
		return err
	}

	if err := h.db.Delete(&favorite).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
