package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
)

// StatsHandler serves derived read-only aggregates. No endpoint here has
// side effects.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// Stats returns the public marketplace totals.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	totals, err := h.marketplaceTotals()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": totals})
}

// UserStats returns aggregates scoped to the caller's role: providers
// get their service and booking figures, customers their booking counts,
// admins the marketplace totals.
func (h *StatsHandler) UserStats(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	switch user.Role {
	case models.RoleProvider:
		return h.providerStats(c, user)
	case models.RoleCustomer:
		return h.customerStats(c, user)
	default:
		totals, err := h.marketplaceTotals()
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": totals})
	}
}

func (h *StatsHandler) providerStats(c *fiber.Ctx, user *models.User) error {
	var serviceCount int64
	if err := h.db.Model(&models.Service{}).
		Where("provider_id = ?", user.ID).Count(&serviceCount).Error; err != nil {
		return err
	}

	base := h.db.Model(&models.Booking{}).
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("services.provider_id = ?", user.ID)

	var totalBookings int64
	if err := base.Session(&gorm.Session{}).Count(&totalBookings).Error; err != nil {
		return err
	}

	byStatus, err := h.bookingsByStatus(base)
	if err != nil {
		return err
	}

	var avgRating float64
	if err := h.db.Model(&models.Booking{}).
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("services.provider_id = ? AND bookings.status = ? AND bookings.rating IS NOT NULL",
			user.ID, models.BookingCompleted).
		Select("COALESCE(AVG(bookings.rating), 0)").
		Scan(&avgRating).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"service_count":      serviceCount,
			"total_bookings":     totalBookings,
			"pending_bookings":   byStatus[models.BookingPending],
			"confirmed_bookings": byStatus[models.BookingConfirmed],
			"completed_bookings": byStatus[models.BookingCompleted],
			"average_rating":     math.Round(avgRating*10) / 10,
		},
	})
}

func (h *StatsHandler) customerStats(c *fiber.Ctx, user *models.User) error {
	base := h.db.Model(&models.Booking{}).Where("customer_id = ?", user.ID)

	var totalBookings int64
	if err := base.Session(&gorm.Session{}).Count(&totalBookings).Error; err != nil {
		return err
	}

	byStatus, err := h.bookingsByStatus(base)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_bookings":     totalBookings,
			"pending_bookings":   byStatus[models.BookingPending],
			"confirmed_bookings": byStatus[models.BookingConfirmed],
			"completed_bookings": byStatus[models.BookingCompleted],
			"cancelled_bookings": byStatus[models.BookingCancelled],
		},
	})
}

func (h *StatsHandler) bookingsByStatus(query *gorm.DB) (map[models.BookingStatus]int64, error) {
	type statusCount struct {
		Status models.BookingStatus
		Count  int64
	}

	var rows []statusCount
	if err := query.Session(&gorm.Session{}).
		Select("bookings.status, count(*) as count").
		Group("bookings.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byStatus := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	return byStatus, nil
}

func (h *StatsHandler) marketplaceTotals() (fiber.Map, error) {
	var totalUsers, customers, providers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.User{}).
		Where("role = ?", models.RoleCustomer).Count(&customers).Error; err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.User{}).
		Where("role = ?", models.RoleProvider).Count(&providers).Error; err != nil {
		return nil, err
	}

	var activeServices int64
	if err := h.db.Model(&models.Service{}).
		Where("is_active = ?", true).Count(&activeServices).Error; err != nil {
		return nil, err
	}

	var totalBookings, confirmedBookings int64
	if err := h.db.Model(&models.Booking{}).Count(&totalBookings).Error; err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.Booking{}).
		Where("status = ?", models.BookingConfirmed).Count(&confirmedBookings).Error; err != nil {
		return nil, err
	}

	return fiber.Map{
		"total_users":        totalUsers,
		"total_customers":    customers,
		"total_providers":    providers,
		"active_services":    activeServices,
		"total_bookings":     totalBookings,
		"confirmed_bookings": confirmedBookings,
	}, nil
}
