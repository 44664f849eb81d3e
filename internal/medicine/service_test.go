package medicine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	medicines map[int64]*Medicine
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{medicines: make(map[int64]*Medicine)}
}

func (f *fakeStore) Create(_ context.Context, m *Medicine) (*Medicine, error) {
	f.nextID++
	saved := *m
	saved.ID = f.nextID
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	f.medicines[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Medicine, error) {
	return f.medicines[id], nil
}

func (f *fakeStore) ListByUserID(_ context.Context, userID int64) ([]*Medicine, error) {
	var out []*Medicine
	for _, m := range f.medicines {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchByName(_ context.Context, userID int64, keyword string) ([]*Medicine, error) {
	return f.ListByUserID(context.Background(), userID)
}

func (f *fakeStore) Update(_ context.Context, m *Medicine) (*Medicine, error) {
	existing, ok := f.medicines[m.ID]
	if !ok {
		return nil, nil
	}
	updated := *m
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	f.medicines[m.ID] = &updated
	return &updated, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.medicines, id)
	return nil
}

type fakeNotificationStore struct {
	deletedMedicineIDs []int64
}

func (f *fakeNotificationStore) DeleteByMedicineID(_ context.Context, medicineID int64) error {
	f.deletedMedicineIDs = append(f.deletedMedicineIDs, medicineID)
	return nil
}

func TestComputeDashboardStats(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	today := DateOnly(now)

	offsets := []int{-5, -1, 3, 60, 180}
	var medicines []*Medicine
	for _, d := range offsets {
		medicines = append(medicines, &Medicine{ExpiryDate: today.AddDate(0, 0, d)})
	}

	stats := ComputeDashboardStats(medicines, now)
	require.Equal(t, &DashboardStats{Total: 5, Expired: 2, ExpiringSoon: 1, Safe: 2}, stats)
}

func TestComputeDashboardStats_Boundaries(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	today := DateOnly(now)

	t.Run("ExpiringTodayCountsAsSoon", func(t *testing.T) {
		stats := ComputeDashboardStats([]*Medicine{{ExpiryDate: today}}, now)
		require.Equal(t, 1, stats.ExpiringSoon)
		require.Zero(t, stats.Expired)
	})

	t.Run("WindowEndIsInclusive", func(t *testing.T) {
		stats := ComputeDashboardStats([]*Medicine{{ExpiryDate: today.AddDate(0, 0, 7)}}, now)
		require.Equal(t, 1, stats.ExpiringSoon)

		stats = ComputeDashboardStats([]*Medicine{{ExpiryDate: today.AddDate(0, 0, 8)}}, now)
		require.Equal(t, 1, stats.Safe)
	})
}

func TestService_OwnershipChecks(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, &fakeNotificationStore{})

	created, err := svc.Create(ctx, 1, &CreateMedicineRequest{Name: "Aspirin", ExpiryDate: "2027-01-15"})
	require.NoError(t, err)
	require.Equal(t, "2027-01-15", created.ExpiryDate.Format(DateLayout))

	t.Run("OwnerCanRead", func(t *testing.T) {
		got, err := svc.GetByID(ctx, 1, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Aspirin", got.Name)
	})

	t.Run("NonOwnerGetsNotFound", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 2, created.ID)
		require.ErrorIs(t, err, ErrMedicineNotFound)
	})

	t.Run("NonOwnerCannotUpdate", func(t *testing.T) {
		_, err := svc.Update(ctx, 2, created.ID, &UpdateMedicineRequest{Name: "Stolen", ExpiryDate: "2027-01-15"})
		require.ErrorIs(t, err, ErrMedicineNotFound)
	})

	t.Run("NonOwnerCannotDelete", func(t *testing.T) {
		err := svc.Delete(ctx, 2, created.ID)
		require.ErrorIs(t, err, ErrMedicineNotFound)
	})
}

func TestService_DeleteRemovesNotifications(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	notifications := &fakeNotificationStore{}
	svc := NewService(store, notifications)

	created, err := svc.Create(ctx, 1, &CreateMedicineRequest{Name: "Insulin", ExpiryDate: "2026-12-01"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	require.Equal(t, []int64{created.ID}, notifications.deletedMedicineIDs)

	_, err = svc.GetByID(ctx, 1, created.ID)
	require.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestService_InvalidDates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeStore(), &fakeNotificationStore{})

	_, err := svc.Create(ctx, 1, &CreateMedicineRequest{Name: "Aspirin", ExpiryDate: "15/01/2027"})
	require.ErrorIs(t, err, ErrInvalidDate)

	bad := "not-a-date"
	_, err = svc.Create(ctx, 1, &CreateMedicineRequest{Name: "Aspirin", ExpiryDate: "2027-01-15", PurchaseDate: &bad})
	require.ErrorIs(t, err, ErrInvalidDate)
}
