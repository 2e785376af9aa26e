package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking ties a customer to a service. Status moves
// pending -> confirmed -> completed, with cancellation as the side exit;
// rating and review are set only on completed bookings.
type Booking struct {
	BaseModel
	ServiceID    uuid.UUID     `gorm:"type:uuid;index" json:"service_id"`
	Service      *Service      `gorm:"constraint:OnDelete:CASCADE" json:"service,omitempty"`
	CustomerID   uuid.UUID     `gorm:"type:uuid;index" json:"customer_id"`
	Customer     *User         `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Status       BookingStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	ScheduledFor *time.Time    `json:"scheduled_for"`
	Notes        string        `json:"notes"`
	Rating       *int          `json:"rating"`
	Review       string        `json:"review"`
}
