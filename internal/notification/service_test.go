package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/medtrack/internal/medicine"
	"github.com/fkhayef/medtrack/internal/user"
)

type fakeStore struct {
	notifications []*Notification
	nextID        int64
	createErr     error
}

func (f *fakeStore) CreateAlert(_ context.Context, n *Notification) (*Notification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.notifications {
		if existing.MedicineID == n.MedicineID && existing.Type == n.Type {
			return nil, nil
		}
	}
	f.nextID++
	saved := *n
	saved.ID = f.nextID
	saved.CreatedAt = time.Now()
	f.notifications = append(f.notifications, &saved)
	return &saved, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Notification, error) {
	for _, n := range f.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByUserID(_ context.Context, userID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range f.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) MarkAsRead(_ context.Context, id int64) error {
	for _, n := range f.notifications {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeStore) MarkAllAsRead(_ context.Context, userID int64) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeStore) GetUnreadCount(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeUserStore struct {
	users map[int64]*user.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	return f.users[id], nil
}

type fakePublisher struct {
	published []interface{}
	userIDs   []int64
}

func (f *fakePublisher) PublishNotification(userID int64, payload interface{}) {
	f.userIDs = append(f.userIDs, userID)
	f.published = append(f.published, payload)
}

type fakeMailer struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeMailer) SendExpiryAlert(to, medicineName, expiryDate, alertType string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixture() (*Service, *fakeStore, *fakePublisher, *fakeMailer) {
	store := &fakeStore{}
	users := &fakeUserStore{users: map[int64]*user.User{
		1: {ID: 1, Email: "owner@example.com", EmailNotifications: true},
		2: {ID: 2, Email: "quiet@example.com", EmailNotifications: false},
	}}
	publisher := &fakePublisher{}
	mail := &fakeMailer{}
	svc := NewService(store, users, publisher, mail, testLogger())
	return svc, store, publisher, mail
}

func testMedicine(userID int64) *medicine.Medicine {
	return &medicine.Medicine{
		ID:         10,
		UserID:     userID,
		Name:       "Aspirin",
		ExpiryDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatchAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsPushesAndEmails", func(t *testing.T) {
		svc, store, publisher, mail := fixture()

		err := svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "Aspirin expired on 2026-09-01. Please dispose of it safely.")
		require.NoError(t, err)

		require.Len(t, store.notifications, 1)
		saved := store.notifications[0]
		require.Equal(t, int64(1), saved.UserID)
		require.Equal(t, int64(10), saved.MedicineID)
		require.Equal(t, "Aspirin", saved.MedicineName)
		require.Equal(t, TypeExpired, saved.Type)
		require.False(t, saved.IsRead)

		require.Equal(t, []int64{1}, publisher.userIDs)
		view, ok := publisher.published[0].(*View)
		require.True(t, ok)
		require.Equal(t, saved.ID, view.ID)
		require.Equal(t, TypeExpired, view.Type)

		require.Equal(t, []string{"owner@example.com"}, mail.sent)
	})

	t.Run("EmailPreferenceOffSkipsEmail", func(t *testing.T) {
		svc, store, publisher, mail := fixture()

		err := svc.DispatchAlert(ctx, testMedicine(2), TypeExpiringSoon, "Aspirin will expire in 3 days (on 2026-09-01). Please check and replace if needed.")
		require.NoError(t, err)

		require.Len(t, store.notifications, 1)
		require.Len(t, publisher.published, 1)
		require.Empty(t, mail.sent)
	})

	t.Run("EmailFailureDoesNotFailDispatch", func(t *testing.T) {
		svc, store, _, mail := fixture()
		mail.err = errors.New("smtp unreachable")

		err := svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg")
		require.NoError(t, err)
		require.Len(t, store.notifications, 1, "notification must persist despite email failure")

		// The record is the dedup source of truth: a retry must not duplicate.
		mail.err = nil
		err = svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg")
		require.NoError(t, err)
		require.Len(t, store.notifications, 1)
	})

	t.Run("DuplicateIsSilentNoOp", func(t *testing.T) {
		svc, store, publisher, mail := fixture()

		require.NoError(t, svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg"))
		require.NoError(t, svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg"))

		require.Len(t, store.notifications, 1)
		require.Len(t, publisher.published, 1)
		require.Len(t, mail.sent, 1)
	})

	t.Run("PersistenceFailurePropagates", func(t *testing.T) {
		svc, store, publisher, mail := fixture()
		store.createErr = errors.New("write rejected")

		err := svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg")
		require.Error(t, err)
		require.Empty(t, publisher.published, "no push without a persisted record")
		require.Empty(t, mail.sent, "no email without a persisted record")
	})
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := fixture()
	require.NoError(t, svc.DispatchAlert(ctx, testMedicine(1), TypeExpired, "msg"))
	id := store.notifications[0].ID

	t.Run("RecipientCanMarkRead", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(ctx, id, 1))
		require.True(t, store.notifications[0].IsRead)
	})

	t.Run("NonRecipientRejected", func(t *testing.T) {
		err := svc.MarkAsRead(ctx, id, 2)
		require.ErrorIs(t, err, ErrNotRecipient)
	})

	t.Run("MissingNotificationRejected", func(t *testing.T) {
		err := svc.MarkAsRead(ctx, 9999, 1)
		require.ErrorIs(t, err, ErrNotificationNotFound)
	})
}

func TestUnreadCount(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := fixture()

	m := testMedicine(1)
	require.NoError(t, svc.DispatchAlert(ctx, m, TypeExpired, "a"))
	m2 := *m
	m2.ID = 11
	require.NoError(t, svc.DispatchAlert(ctx, &m2, TypeExpiringSoon, "b"))

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, 1))
	count, err = svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)
}
