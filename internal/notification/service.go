package notification

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/medtrack/internal/medicine"
	"github.com/fkhayef/medtrack/internal/user"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the notification persistence the service depends on
type Store interface {
	CreateAlert(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
}

// UserStore looks up the alert recipient for email preference and address
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Publisher pushes a payload to a user's live channel. Implementations must
// not block.
type Publisher interface {
	PublishNotification(userID int64, payload interface{})
}

// EmailSender sends a kind-styled expiry alert email
type EmailSender interface {
	SendExpiryAlert(to, medicineName, expiryDate, alertType string) error
}

// Service persists notifications and fans alerts out to the delivery
// channels. It is the single dispatch point the expiry scanner calls into.
type Service struct {
	store     Store
	users     UserStore
	publisher Publisher
	mailer    EmailSender
	log       *logrus.Logger
}

// NewService creates a notification service with its dependencies injected
func NewService(store Store, users UserStore, publisher Publisher, mailer EmailSender, log *logrus.Logger) *Service {
	return &Service{
		store:     store,
		users:     users,
		publisher: publisher,
		mailer:    mailer,
		log:       log,
	}
}

// DispatchAlert records one alert for the medicine and distributes it:
// persist the notification, push it to the owner's live channel, and email
// the owner if their preference allows. Persistence failure is the only
// fatal outcome; a duplicate alert is a silent no-op, and a failure in one
// delivery channel never prevents or rolls back the others.
func (s *Service) DispatchAlert(ctx context.Context, m *medicine.Medicine, kind Type, message string) error {
	saved, err := s.store.CreateAlert(ctx, &Notification{
		UserID:       m.UserID,
		MedicineID:   m.ID,
		MedicineName: m.Name,
		Type:         kind,
		Message:      message,
	})
	if err != nil {
		return err
	}
	if saved == nil {
		// Lost a race with another dispatch for the same (medicine, kind).
		s.log.WithFields(logrus.Fields{
			"medicine_id": m.ID,
			"type":        kind,
		}).Debug("alert already exists, skipping dispatch")
		return nil
	}

	s.publisher.PublishNotification(m.UserID, saved.ToView())

	s.sendEmail(ctx, m, kind)
	return nil
}

func (s *Service) sendEmail(ctx context.Context, m *medicine.Medicine, kind Type) {
	owner, err := s.users.GetByID(ctx, m.UserID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", m.UserID).Warn("failed to look up alert recipient, skipping email")
		return
	}
	if owner == nil || !owner.EmailNotifications {
		return
	}

	expiry := m.ExpiryDate.Format(medicine.DateLayout)
	if err := s.mailer.SendExpiryAlert(owner.Email, m.Name, expiry, string(kind)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":     m.UserID,
			"medicine_id": m.ID,
			"type":        kind,
		}).Warn("failed to send expiry alert email")
	}
}

// List retrieves a user's notifications as display views
func (s *Service) List(ctx context.Context, userID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByUserID(ctx, userID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read after a recipient check
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.UserID != userID {
		return ErrNotRecipient
	}

	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}
