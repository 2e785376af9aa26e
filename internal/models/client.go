package models

import (
	"github.com/google/uuid"
)

// ClientProfile extends a customer account with interface and
// notification preferences plus simple activity counters.
type ClientProfile struct {
	BaseModel
	UserID             uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User               *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PreferredLanguage  string    `gorm:"size:10;default:en" json:"preferred_language"`
	EmailNotifications bool      `gorm:"default:true" json:"email_notifications"`
	SMSNotifications   bool      `json:"sms_notifications"`
	PushNotifications  bool      `gorm:"default:true" json:"push_notifications"`
	DefaultLocation    string    `gorm:"size:200" json:"default_location"`
	PreferredCurrency  string    `gorm:"size:3;default:NPR" json:"preferred_currency"`
	TotalBookings      int       `json:"total_bookings"`
	TotalSpent         float64   `json:"total_spent"`
}

// ClientFavorite marks a service a customer wants quick access to.
// The (client, service) pair is unique at the store level so a duplicate
// add fails instead of silently doubling up.
type ClientFavorite struct {
	BaseModel
	ClientID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_client_favorite" json:"client_id"`
	Client    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ServiceID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_client_favorite" json:"service_id"`
	Service   *Service  `gorm:"constraint:OnDelete:CASCADE" json:"service,omitempty"`
}

// ClientPreferences stores a customer's search and display defaults.
type ClientPreferences struct {
	BaseModel
	ClientID            uuid.UUID         `gorm:"type:uuid;uniqueIndex" json:"client_id"`
	Client              *User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DefaultSearchRadius int               `gorm:"default:50" json:"default_search_radius"`
	PreferredCategories []ServiceCategory `gorm:"many2many:client_preferred_categories" json:"preferred_categories"`
	MinPriceFilter      *float64          `json:"min_price_filter"`
	MaxPriceFilter      *float64          `json:"max_price_filter"`
	ItemsPerPage        int               `gorm:"default:12" json:"items_per_page"`
}
