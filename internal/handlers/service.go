package handlers

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
	"github.com/example/nepwork/internal/utils"
)

// slugLimit caps generated slugs below the column size so a suffix could
// still fit if one is ever needed.
const slugLimit = 175

// ServiceHandler manages categories and service listings.
type ServiceHandler struct {
	db *gorm.DB
}

// NewServiceHandler constructs a ServiceHandler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// ListCategories returns all service categories ordered by name.
func (h *ServiceHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.ServiceCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// ListServices returns active services ranked for discovery: rated
// services first by average rating, then credentialed-but-unrated ones,
// then newest.
func (h *ServiceHandler) ListServices(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Service{}).
		Preload("Provider.KYCVerification").Preload("Provider").Preload("Category").
		Where("services.is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Joins("JOIN service_categories ON service_categories.id = services.category_id").
			Where("service_categories.slug = ?", category)
	}

	if search := strings.TrimSpace(c.Query("q")); search != "" {
		query = query.Where("LOWER(services.title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return err
	}

	ratings, err := h.serviceRatings()
	if err != nil {
		return err
	}

	sort.SliceStable(services, func(i, j int) bool {
		ri, iRated := ratings[services[i].ID]
		rj, jRated := ratings[services[j].ID]
		if iRated != jRated {
			return iRated
		}
		if iRated && ri.Avg != rj.Avg {
			return ri.Avg > rj.Avg
		}
		ci, cj := services[i].HasCredentials(), services[j].HasCredentials()
		if ci != cj {
			return ci
		}
		return services[i].CreatedAt.After(services[j].CreatedAt)
	})

	total := int64(len(services))
	start := pg.Offset
	if start > len(services) {
		start = len(services)
	}
	end := start + pg.Limit
	if end > len(services) {
		end = len(services)
	}
	services = services[start:end]

	data := make([]fiber.Map, 0, len(services))
	for i := range services {
		item, err := h.serializeService(&services[i])
		if err != nil {
			return err
		}
		data = append(data, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type serviceRequest struct {
	CategoryID   string  `json:"category_id"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	BasePrice    float64 `json:"base_price"`
	PricingType  string  `json:"pricing_type"`
	Location     string  `json:"location"`
	Certificates string  `json:"certificates"`
	Degrees      string  `json:"degrees"`
}

// CreateService lets a KYC-approved provider publish a listing.
func (h *ServiceHandler) CreateService(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	if user.Role != models.RoleProvider {
		return apperrors.Forbidden("only providers can create services")
	}

	kycStatus := models.KYCStatusNotSubmitted
	var kyc models.KYCVerification
	if err := h.db.First(&kyc, "user_id = ?", user.ID).Error; err == nil {
		kycStatus = string(kyc.Status)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !kyc.IsVerified() {
		return apperrors.Forbidden("KYC verification required to post services").
			WithDetails(map[string]interface{}{
				"kyc_required": true,
				"kyc_status":   kycStatus,
			})
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.Title == "" {
		return apperrors.BadRequest("title is required")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return apperrors.BadRequest("invalid category_id")
	}

	var category models.ServiceCategory
	if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.BadRequest("unknown category")
		}
		return err
	}

	pricingType := models.PricingFixed
	if req.PricingType != "" {
		pricingType = models.PricingType(req.PricingType)
		if pricingType != models.PricingFixed && pricingType != models.PricingHourly {
			return apperrors.BadRequest("pricing_type must be fixed or hourly")
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title, slugLimit)
	}
	if slug == "" {
		return apperrors.BadRequest("slug could not be derived from title")
	}

	var dup models.Service
	if err := h.db.First(&dup, "slug = ?", slug).Error; err == nil {
		return apperrors.Conflict("slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	service := models.Service{
		ProviderID:   user.ID,
		CategoryID:   category.ID,
		Title:        req.Title,
		Slug:         slug,
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		PricingType:  pricingType,
		Location:     req.Location,
		Certificates: req.Certificates,
		Degrees:      req.Degrees,
		IsActive:     true,
	}

	if err := h.db.Create(&service).Error; err != nil {
		return err
	}

	service.Provider = user
	service.Category = &category
	item, err := h.serializeService(&service)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// MyServices lists the calling provider's own listings, newest first.
func (h *ServiceHandler) MyServices(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var services []models.Service
	if err := h.db.Preload("Provider.KYCVerification").Preload("Provider").Preload("Category").
		Where("provider_id = ?", user.ID).
		Order("created_at desc").
		Find(&services).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(services))
	for i := range services {
		item, err := h.serializeService(&services[i])
		if err != nil {
			return err
		}
		data = append(data, item)
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

// GetService returns a single active service with its reviews.
func (h *ServiceHandler) GetService(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.BadRequest("invalid id")
	}

	var service models.Service
	if err := h.db.Preload("Provider.KYCVerification").Preload("Provider").Preload("Category").
		First(&service, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("service not found")
		}
		return err
	}

	item, err := h.serializeService(&service)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

type serviceUpdateRequest struct {
	CategoryID   *string  `json:"category_id"`
	Title        *string  `json:"title"`
	Slug         *string  `json:"slug"`
	Description  *string  `json:"description"`
	BasePrice    *float64 `json:"base_price"`
	PricingType  *string  `json:"pricing_type"`
	Location     *string  `json:"location"`
	Certificates *string  `json:"certificates"`
	Degrees      *string  `json:"degrees"`
	IsActive     *bool    `json:"is_active"`
}

// UpdateService applies a partial update to a provider's own listing.
func (h *ServiceHandler) UpdateService(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	service, err := h.loadOwnedService(c, user)
	if err != nil {
		return err
	}

	var req serviceUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.PricingType != nil {
		pt := models.PricingType(*req.PricingType)
		if pt != models.PricingFixed && pt != models.PricingHourly {
			return apperrors.BadRequest("pricing_type must be fixed or hourly")
		}
		updates["pricing_type"] = pt
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Certificates != nil {
		updates["certificates"] = *req.Certificates
	}
	if req.Degrees != nil {
		updates["degrees"] = *req.Degrees
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return apperrors.BadRequest("invalid category_id")
		}
		var category models.ServiceCategory
		if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.BadRequest("unknown category")
			}
			return err
		}
		updates["category_id"] = category.ID
	}

	if len(updates) > 0 {
		if err := h.db.Model(service).Updates(updates).Error; err != nil {
			return err
		}
	}

	if err := h.db.Preload("Provider.KYCVerification").Preload("Provider").Preload("Category").
		First(service, "id = ?", service.ID).Error; err != nil {
		return err
	}

	item, err := h.serializeService(service)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteService removes a provider's own listing.
func (h *ServiceHandler) DeleteService(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	service, err := h.loadOwnedService(c, user)
	if err != nil {
		return err
	}

	if err := h.db.Delete(service).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ServiceHandler) loadOwnedService(c *fiber.Ctx, user *models.User) (*models.Service, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.BadRequest("invalid id")
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("service not found")
		}
		return nil, err
	}

	if user.Role != models.RoleProvider || service.ProviderID != user.ID {
		return nil, apperrors.Forbidden("you cannot modify this service")
	}

	return &service, nil
}

type ratingAggregate struct {
	ServiceID uuid.UUID
	Avg       float64
	Total     int64
}

// serviceRatings aggregates the average rating of completed, rated
// bookings per service in one query.
func (h *ServiceHandler) serviceRatings() (map[uuid.UUID]ratingAggregate, error) {
	var rows []ratingAggregate
	err := h.db.Model(&models.Booking{}).
		Select("service_id, AVG(rating) as avg, COUNT(*) as total").
		Where("status = ? AND rating IS NOT NULL", models.BookingCompleted).
		Group("service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ratings := make(map[uuid.UUID]ratingAggregate, len(rows))
	for _, row := range rows {
		ratings[row.ServiceID] = row
	}
	return ratings, nil
}

// serializeService shapes a listing with its derived read-model fields:
// average rating, review count and the ten most recent reviews.
func (h *ServiceHandler) serializeService(service *models.Service) (fiber.Map, error) {
	var avgRating interface{}
	var avg float64
	err := h.db.Model(&models.Booking{}).
		Where("service_id = ? AND status = ? AND rating IS NOT NULL",
			service.ID, models.BookingCompleted).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if avg > 0 {
		avgRating = math.Round(avg*10) / 10
	}

	var totalReviews int64
	if err := h.db.Model(&models.Booking{}).
		Where("service_id = ? AND status = ? AND review <> ''",
			service.ID, models.BookingCompleted).
		Count(&totalReviews).Error; err != nil {
		return nil, err
	}

	var reviewBookings []models.Booking
	if err := h.db.Preload("Customer").
		Where("service_id = ? AND status = ? AND review <> ''",
			service.ID, models.BookingCompleted).
		Order("updated_at desc").Limit(10).
		Find(&reviewBookings).Error; err != nil {
		return nil, err
	}

	reviews := make([]fiber.Map, 0, len(reviewBookings))
	for _, b := range reviewBookings {
		var name, email string
		if b.Customer != nil {
			email = b.Customer.Email
			name = b.Customer.DisplayName
			if name == "" {
				name = b.Customer.Username
			}
		}
		reviews = append(reviews, fiber.Map{
			"id":             b.ID,
			"customer_email": email,
			"customer_name":  name,
			"rating":         b.Rating,
			"review":         b.Review,
			"created_at":     b.UpdatedAt.Format(time.RFC3339),
		})
	}

	var providerName, providerEmail string
	providerVerified := false
	if service.Provider != nil {
		providerEmail = service.Provider.Email
		providerName = service.Provider.DisplayName
		if providerName == "" {
			providerName = service.Provider.Username
		}
		providerVerified = service.Provider.KYCVerification.IsVerified()
	}

	var categoryName string
	if service.Category != nil {
		categoryName = service.Category.Name
	}

	return fiber.Map{
		"id":                service.ID,
		"provider":          service.ProviderID,
		"provider_email":    providerEmail,
		"provider_name":     providerName,
		"provider_verified": providerVerified,
		"category":          service.CategoryID,
		"category_name":     categoryName,
		"title":             service.Title,
		"slug":              service.Slug,
		"description":       service.Description,
		"base_price":        service.BasePrice,
		"pricing_type":      service.PricingType,
		"location":          service.Location,
		"certificates":      service.Certificates,
		"degrees":           service.Degrees,
		"is_active":         service.IsActive,
		"average_rating":    avgRating,
		"total_reviews":     totalReviews,
		"reviews":           reviews,
		"created_at":        service.CreatedAt,
		"updated_at":        service.UpdatedAt,
	}, nil
}
