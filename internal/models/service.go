package models

import (
	"github.com/google/uuid"
)

// PricingType says whether a service price is a flat fee or an hourly rate.
type PricingType string

const (
	PricingFixed  PricingType = "fixed"
	PricingHourly PricingType = "hourly"
)

// ServiceCategory groups services. Deletion is blocked while services
// still reference the category.
type ServiceCategory struct {
	BaseModel
	Name        string `gorm:"size:120;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:140;uniqueIndex" json:"slug"`
	Description string `json:"description"`
}

// Service is a listing owned by a single KYC-approved provider.
type Service struct {
	BaseModel
	ProviderID   uuid.UUID        `gorm:"type:uuid;index" json:"provider_id"`
	Provider     *User            `gorm:"constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	CategoryID   uuid.UUID        `gorm:"type:uuid;index" json:"category_id"`
	Category     *ServiceCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Title        string           `gorm:"size:160" json:"title"`
	Slug         string           `gorm:"size:180;uniqueIndex" json:"slug"`
	Description  string           `json:"description"`
	BasePrice    float64          `json:"base_price"`
	PricingType  PricingType      `gorm:"type:varchar(20);default:fixed" json:"pricing_type"`
	Location     string           `gorm:"size:200" json:"location"`
	Certificates string           `json:"certificates"`
	Degrees      string           `json:"degrees"`
	IsActive     bool             `gorm:"default:true" json:"is_active"`
}

// HasCredentials reports whether the listing carries certificates or
// degrees; credentialed-but-unrated services rank above plain ones.
func (s *Service) HasCredentials() bool {
	return s.Certificates != "" || s.Degrees != ""
}
