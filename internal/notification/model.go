package notification

import "time"

// Type is the alert kind that triggered a notification
type Type string

const (
	TypeExpired      Type = "EXPIRED"
	TypeExpiringSoon Type = "EXPIRING_SOON"
)

// Notification represents a persisted expiry alert. The medicine name is
// denormalized so the notification stays displayable after the medicine
// record changes.
type Notification struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	MedicineID   int64     `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Type         Type      `json:"type"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// View is the display-ready shape delivered to clients, both over the
// websocket push and the REST listing
type View struct {
	ID           int64  `json:"id"`
	MedicineID   int64  `json:"medicineId"`
	MedicineName string `json:"medicineName"`
	Type         Type   `json:"type"`
	Message      string `json:"message"`
	Read         bool   `json:"read"`
	CreatedAt    string `json:"createdAt"`
}

// ToView converts a Notification to its delivery shape
func (n *Notification) ToView() *View {
	return &View{
		ID:           n.ID,
		MedicineID:   n.MedicineID,
		MedicineName: n.MedicineName,
		Type:         n.Type,
		Message:      n.Message,
		Read:         n.IsRead,
		CreatedAt:    n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
