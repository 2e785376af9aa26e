package models

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what a user is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User represents a marketplace account. Role decides which surface the
// account may use: customers book, providers list services, admins decide KYC.
type User struct {
	BaseModel
	Username        string           `json:"username"`
	Email           string           `gorm:"uniqueIndex" json:"email"`
	PasswordHash    string           `json:"-"`
	Role            Role             `gorm:"type:varchar(20);default:customer" json:"role"`
	DisplayName     string           `json:"display_name"`
	PhoneNumber     string           `json:"phone_number"`
	AvatarURL       string           `json:"avatar_url"`
	Bio             string           `json:"bio"`
	IsEmailVerified bool             `json:"is_email_verified"`
	KYCVerification *KYCVerification `gorm:"foreignKey:UserID" json:"kyc_verification,omitempty"`
}

// KYCStatus is the decision state of a submitted verification.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// KYCStatusNotSubmitted is reported for users without a record; it is
// never stored.
const KYCStatusNotSubmitted = "not_submitted"

// KYCVerification holds one user's identity documents and the admin
// decision on them. At most one record exists per user; once decided it
// never returns to pending.
type KYCVerification struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FullName    string    `json:"full_name"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`

	// Document references as returned by the upload storage. Contents are
	// never inspected here, only presence.
	Photo          string `json:"photo"`
	Citizenship    string `json:"citizenship"`
	DrivingLicense string `json:"driving_license"`
	Passport       string `json:"passport"`

	Status       KYCStatus  `gorm:"type:varchar(20);default:pending" json:"status"`
	AdminNotes   string     `json:"admin_notes"`
	VerifiedAt   *time.Time `json:"verified_at"`
	VerifiedByID *uuid.UUID `gorm:"type:uuid" json:"verified_by"`
}

// IsVerified reports whether the record has been approved by an admin.
func (k *KYCVerification) IsVerified() bool {
	return k != nil && k.Status == KYCApproved
}
