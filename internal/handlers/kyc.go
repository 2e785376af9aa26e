package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
	"github.com/example/nepwork/internal/utils"
)

// KYCHandler manages the verification workflow: one submission slot per
// user, decided by admins.
type KYCHandler struct {
	db *gorm.DB
}

// NewKYCHandler constructs a KYCHandler.
func NewKYCHandler(db *gorm.DB) *KYCHandler {
	return &KYCHandler{db: db}
}

type kycSubmitRequest struct {
	FullName       string `json:"full_name"`
	Address        string `json:"address"`
	PhoneNumber    string `json:"phone_number"`
	Email          string `json:"email"`
	Photo          string `json:"photo"`
	Citizenship    string `json:"citizenship"`
	DrivingLicense string `json:"driving_license"`
	Passport       string `json:"passport"`
}

// Submit files the caller's verification documents. A user gets exactly
// one submission; re-submitting is rejected.
func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var req kycSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.FullName == "" {
		return apperrors.BadRequest("full_name is required")
	}

	var existing models.KYCVerification
	if err := h.db.First(&existing, "user_id = ?", user.ID).Error; err == nil {
		return apperrors.BadRequest("KYC already submitted")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record := models.KYCVerification{
		UserID:         user.ID,
		FullName:       req.FullName,
		Address:        req.Address,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		Photo:          req.Photo,
		Citizenship:    req.Citizenship,
		DrivingLicense: req.DrivingLicense,
		Passport:       req.Passport,
		Status:         models.KYCPending,
	}

	if err := h.db.Create(&record).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": record})
}

// Status reports the caller's verification state.
func (h *KYCHandler) Status(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	var record models.KYCVerification
	if err := h.db.First(&record, "user_id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"success": true,
				"status":  models.KYCStatusNotSubmitted,
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "status": record.Status, "data": record})
}

// Pending lists undecided submissions, newest first. Admin only.
func (h *KYCHandler) Pending(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.KYCVerification{}).
		Where("status = ?", models.KYCPending).Count(&total).Error; err != nil {
		return err
	}

	var records []models.KYCVerification
	if err := h.db.Where("status = ?", models.KYCPending).
		Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&records).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type kycDecisionRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// Verify applies an admin decision. Approve and reject can be re-applied
// to flip an earlier decision; a record never returns to pending.
func (h *KYCHandler) Verify(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.BadRequest("invalid id")
	}

	var req kycDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	var status models.KYCStatus
	switch req.Action {
	case "approve":
		status = models.KYCApproved
	case "reject":
		status = models.KYCRejected
	default:
		return apperrors.BadRequest("action must be approve or reject")
	}

	var record models.KYCVerification
	if err := h.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("KYC record not found")
		}
		return err
	}

	// Decision fields change together or not at all.
	now := time.Now()
	record.Status = status
	record.AdminNotes = req.Notes
	record.VerifiedByID = &admin.ID
	record.VerifiedAt = &now

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&record).Updates(map[string]interface{}{
			"status":         record.Status,
			"admin_notes":    record.AdminNotes,
			"verified_by_id": record.VerifiedByID,
			"verified_at":    record.VerifiedAt,
		}).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": record})
}
