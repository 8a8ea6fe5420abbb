// internal/core/domain/lot.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LotStatus represents the lifecycle status of a lot
type LotStatus string

// Lot status constants
const (
	LotStatusActive    LotStatus = "ACTIVE"
	LotStatusOnHold    LotStatus = "ON_HOLD"
	LotStatusExhausted LotStatus = "EXHAUSTED"
	LotStatusExpired   LotStatus = "EXPIRED"
)

// IsValid reports whether s is a known lot status
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusOnHold, LotStatusExhausted, LotStatusExpired:
		return true
	}
	return false
}

// Lot is a traceable batch of a product
type Lot struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	LotNo      string     `json:"lot_no"`
	Status     LotStatus  `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

// ExpiresBefore reports whether the lot's expiry day is strictly before the
// calendar day of t, read in t's own location. Lots without an expiry never
// expire.
func (l *Lot) ExpiresBefore(t time.Time) bool {
	return l.ExpiryDate != nil && calendarDay(*l.ExpiryDate).Before(calendarDay(t))
}

// DaysUntilExpiry returns the whole days between today and the expiry date,
// negative once the lot has expired. ok is false when the lot has no expiry.
func (l *Lot) DaysUntilExpiry(today time.Time) (days int, ok bool) {
	if l.ExpiryDate == nil {
		return 0, false
	}
	return int(calendarDay(*l.ExpiryDate).Sub(calendarDay(today)).Hours() / 24), true
}

// calendarDay maps t's date, as seen in its own location, to UTC midnight
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
