package medicine

import "time"

// DateLayout is the calendar-date format used throughout the API.
// Expiry comparisons are day-granularity, never time-of-day.
const DateLayout = "2006-01-02"

// Medicine represents a medicine record owned by a user
type Medicine struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Name         string     `json:"name"`
	Manufacturer *string    `json:"manufacturer,omitempty"`
	BatchNumber  *string    `json:"batch_number,omitempty"`
	Category     *string    `json:"category,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	ExpiryDate   time.Time  `json:"expiry_date"`
	Quantity     int        `json:"quantity"`
	Dosage       *string    `json:"dosage,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DateOnly strips the time component, keeping just the calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
