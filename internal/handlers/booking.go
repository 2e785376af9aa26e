package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
	"github.com/example/nepwork/internal/utils"
)

// BookingHandler manages the booking lifecycle.
type BookingHandler struct {
	db *gorm.DB
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{db: db}
}

type createBookingRequest struct {
	ServiceID    string `json:"service_id"`
	ScheduledFor string `json:"scheduled_for"`
	Notes        string `json:"notes"`
}

// CreateBooking lets a customer book a service. The service only has to
// exist; inactive listings stay bookable.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	if user.Role != models.RoleCustomer {
		return apperrors.Forbidden("only customers can create bookings")
	}

	var req createBookingRequest
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

	booking := models.Booking{
		ServiceID:  service.ID,
		CustomerID: user.ID,
		Status:     models.BookingPending,
		Notes:      req.Notes,
	}

	if req.ScheduledFor != "" {
		scheduled, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return apperrors.BadRequest("scheduled_for must be RFC3339")
		}
		booking.ScheduledFor = &scheduled
	}

	if err := h.db.Create(&booking).Error; err != nil {
		return err
	}

	booking.Service = &service
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    h.serializeBooking(&booking),
	})
}

// MyBookings lists bookings scoped by role: customers see their own,
// providers see bookings against their services, admins see everything.
func (h *BookingHandler) MyBookings(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Booking{}).Preload("Service").Preload("Customer")

	switch user.Role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", user.ID)
	case models.RoleProvider:
		query = query.Joins("JOIN services ON services.id = bookings.service_id").
			Where("services.provider_id = ?", user.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var bookings []models.Booking
	if err := query.Limit(pg.Limit).Offset(pg.Offset).
		Order("bookings.created_at desc").
		Find(&bookings).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(bookings))
	for i := range bookings {
		data = append(data, h.serializeBooking(&bookings[i]))
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

type bookingStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus transitions a booking. Providers may set any valid status
// on bookings against their own services, customers may only cancel
// their own, admins are unrestricted. No adjacency is enforced beyond
// the enum itself.
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	booking, err := h.loadBooking(c)
	if err != nil {
		return err
	}

	var req bookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}
	newStatus := models.BookingStatus(req.Status)

	switch user.Role {
	case models.RoleProvider:
		if booking.Service == nil || booking.Service.ProviderID != user.ID {
			return apperrors.Forbidden("you cannot modify this booking")
		}
		if !newStatus.Valid() {
			return apperrors.BadRequest("invalid status")
		}
	case models.RoleCustomer:
		if booking.CustomerID != user.ID {
			return apperrors.Forbidden("you cannot modify this booking")
		}
		if newStatus != models.BookingCancelled {
			return apperrors.BadRequest("customers can only cancel their bookings")
		}
	default:
		if !newStatus.Valid() {
			return apperrors.BadRequest("invalid status")
		}
	}

	if err := h.db.Model(booking).Update("status", newStatus).Error; err != nil {
		return err
	}

	booking.Status = newStatus
	return c.JSON(fiber.Map{"success": true, "data": h.serializeBooking(booking)})
}

type rateBookingRequest struct {
	Rating interface{} `json:"rating"`
	Review string      `json:"review"`
}

// Rate lets the owning customer score a completed booking 1-5 with an
// optional review. Re-rating overwrites; status is untouched.
func (h *BookingHandler) Rate(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	booking, err := h.loadBooking(c)
	if err != nil {
		return err
	}

	if booking.CustomerID != user.ID {
		return apperrors.Forbidden("you cannot rate this booking")
	}

	if booking.Status != models.BookingCompleted {
		return apperrors.BadRequest("only completed bookings can be rated")
	}

	var req rateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	rating, err := parseRating(req.Rating)
	if err != nil {
		return apperrors.BadRequest(err.Error())
	}

	updates := map[string]interface{}{
		"rating": rating,
		"review": req.Review,
	}
	if err := h.db.Model(booking).Updates(updates).Error; err != nil {
		return err
	}

	booking.Rating = &rating
	booking.Review = req.Review
	return c.JSON(fiber.Map{"success": true, "data": h.serializeBooking(booking)})
}

func (h *BookingHandler) loadBooking(c *fiber.Ctx) (*models.Booking, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.BadRequest("invalid id")
	}

	var booking models.Booking
	if err := h.db.Preload("Service").Preload("Customer").
		First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, err
	}

	return &booking, nil
}

// parseRating accepts a JSON number or numeric string and enforces the
// 1-5 range.
func parseRating(value interface{}) (int, error) {
	var rating int
	switch v := value.(type) {
	case float64:
		rating = int(v)
		if float64(rating) != v {
			return 0, fmt.Errorf("rating must be an integer")
		}
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("rating must be an integer")
		}
		rating = parsed
	default:
		return 0, fmt.Errorf("rating must be an integer")
	}

	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5")
	}

	return rating, nil
}

func (h *BookingHandler) serializeBooking(booking *models.Booking) fiber.Map {
	var serviceTitle string
	var providerID interface{}
	if booking.Service != nil {
		serviceTitle = booking.Service.Title
		providerID = booking.Service.ProviderID
	}

	var customerEmail string
	if booking.Customer != nil {
		customerEmail = booking.Customer.Email
	}

	return fiber.Map{
		"id":             booking.ID,
		"service":        booking.ServiceID,
		"service_title":  serviceTitle,
		"provider_id":    providerID,
		"customer":       booking.CustomerID,
		"customer_email": customerEmail,
		"status":         booking.Status,
		"scheduled_for":  booking.ScheduledFor,
		"notes":          booking.Notes,
		"rating":         booking.Rating,
		"review":         booking.Review,
		"created_at":     booking.CreatedAt,
		"updated_at":     booking.UpdatedAt,
	}
}
