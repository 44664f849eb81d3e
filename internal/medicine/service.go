package medicine

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

// soonWindowDays is the dashboard's "expiring soon" window
const soonWindowDays = 7

// Store is the data access the medicine service depends on
type Store interface {
	Create(ctx context.Context, m *Medicine) (*Medicine, error)
	GetByID(ctx context.Context, id int64) (*Medicine, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Medicine, error)
	SearchByName(ctx context.Context, userID int64, keyword string) ([]*Medicine, error)
	Update(ctx context.Context, m *Medicine) (*Medicine, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationStore removes a medicine's notifications when the medicine is deleted
type NotificationStore interface {
	DeleteByMedicineID(ctx context.Context, medicineID int64) error
}

// Service handles medicine business logic
type Service struct {
	store         Store
	notifications NotificationStore
}

// NewService creates a new medicine service with its dependencies injected
func NewService(store Store, notifications NotificationStore) *Service {
	return &Service{store: store, notifications: notifications}
}

// Create adds a new medicine for the given user
func (s *Service) Create(ctx context.Context, userID int64, req *CreateMedicineRequest) (*Medicine, error) {
	m, err := fromRequest(userID, req)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, m)
}

// GetByID retrieves a medicine, rejecting access by non-owners.
// Ownership failures surface as not-found so record existence is not leaked.
func (s *Service) GetByID(ctx context.Context, userID, id int64) (*Medicine, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.UserID != userID {
		return nil, ErrMedicineNotFound
	}
	return m, nil
}

// List retrieves all of a user's medicines ordered by expiry date
func (s *Service) List(ctx context.Context, userID int64) ([]*Medicine, error) {
	return s.store.ListByUserID(ctx, userID)
}

// Search retrieves a user's medicines matching the keyword
func (s *Service) Search(ctx context.Context, userID int64, keyword string) ([]*Medicine, error) {
	return s.store.SearchByName(ctx, userID, keyword)
}

// Update replaces a medicine's fields after an ownership check
func (s *Service) Update(ctx context.Context, userID, id int64, req *UpdateMedicineRequest) (*Medicine, error) {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return nil, err
	}

	m, err := fromRequest(userID, req)
	if err != nil {
		return nil, err
	}
	m.ID = id

	updated, err := s.store.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMedicineNotFound
	}
	return updated, nil
}

// Delete removes a medicine and its notifications
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}

	if err := s.notifications.DeleteByMedicineID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// DashboardStats aggregates the user's inventory by expiry proximity
func (s *Service) DashboardStats(ctx context.Context, userID int64) (*DashboardStats, error) {
	medicines, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeDashboardStats(medicines, time.Now()), nil
}

// ComputeDashboardStats buckets medicines by expiry proximity relative to
// today: expired is strictly before today, expiring soon runs from today
// through today plus the soon window, everything else is safe.
func ComputeDashboardStats(medicines []*Medicine, now time.Time) *DashboardStats {
	today := DateOnly(now)
	windowEnd := today.AddDate(0, 0, soonWindowDays)

	stats := &DashboardStats{Total: len(medicines)}
	for _, m := range medicines {
		expiry := DateOnly(m.ExpiryDate)
		switch {
		case expiry.Before(today):
			stats.Expired++
		case !expiry.After(windowEnd):
			stats.ExpiringSoon++
		default:
			stats.Safe++
		}
	}

	return stats
}

func fromRequest(userID int64, req *CreateMedicineRequest) (*Medicine, error) {
	expiry, err := time.Parse(DateLayout, req.ExpiryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	m := &Medicine{
		UserID:       userID,
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		BatchNumber:  req.BatchNumber,
		Category:     req.Category,
		ExpiryDate:   expiry,
		Quantity:     req.Quantity,
		Dosage:       req.Dosage,
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
	}

	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		purchase, err := time.Parse(DateLayout, *req.PurchaseDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		m.PurchaseDate = &purchase
	}

	return m, nil
}
