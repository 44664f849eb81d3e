package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateAlert conditionally inserts a notification. The unique index on
// (medicine_id, type) makes this the dedup guard: when an alert of the same
// kind already exists for the medicine, no row is written and (nil, nil) is
// returned. Racing dispatches for the same pair cannot both create a record.
func (r *Repository) CreateAlert(ctx context.Context, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, medicine_id, medicine_name, type, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (medicine_id, type) DO NOTHING
		RETURNING id, user_id, medicine_id, medicine_name, type, message, is_read, created_at
	`

	created := &Notification{}
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.MedicineID, n.MedicineName, n.Type, n.Message).Scan(
		&created.ID,
		&created.UserID,
		&created.MedicineID,
		&created.MedicineName,
		&created.Type,
		&created.Message,
		&created.IsRead,
		&created.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict: an alert of this kind already exists for the medicine.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return created, nil
}

// ExistsForMedicineAndType reports whether an alert of the given kind has
// already been created for the medicine
func (r *Repository) ExistsForMedicineAndType(ctx context.Context, medicineID int64, t Type) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM notifications WHERE medicine_id = $1 AND type = $2)`
	if err := r.db.QueryRowContext(ctx, query, medicineID, t).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notification existence: %w", err)
	}
	return exists, nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `
		SELECT id, user_id, medicine_id, medicine_name, type, message, is_read, created_at
		FROM notifications
		WHERE id = $1
	`

	n := &Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.MedicineID,
		&n.MedicineName,
		&n.Type,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListByUserID retrieves a user's notifications, newest first
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	if unreadOnly {
		countQuery += ` AND is_read = false`
	}
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, medicine_id, medicine_name, type, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.MedicineID,
			&n.MedicineName,
			&n.Type,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, total, rows.Err()
}

// MarkAsRead marks a notification as read
func (r *Repository) MarkAsRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all of a user's notifications as read
func (r *Repository) MarkAllAsRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *Repository) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// DeleteByMedicineID removes all notifications for a medicine
func (r *Repository) DeleteByMedicineID(ctx context.Context, medicineID int64) error {
	query := `DELETE FROM notifications WHERE medicine_id = $1`
	if _, err := r.db.ExecContext(ctx, query, medicineID); err != nil {
		return fmt.Errorf("failed to delete notifications for medicine: %w", err)
	}
	return nil
}
