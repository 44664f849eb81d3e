package medicine

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const medicineColumns = `id, user_id, name, manufacturer, batch_number, category,
	purchase_date, expiry_date, quantity, dosage, notes, image_url, created_at, updated_at`

// Repository handles medicine data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new medicine repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanMedicine(row interface{ Scan(dest ...any) error }) (*Medicine, error) {
	m := &Medicine{}
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Manufacturer,
		&m.BatchNumber,
		&m.Category,
		&m.PurchaseDate,
		&m.ExpiryDate,
		&m.Quantity,
		&m.Dosage,
		&m.Notes,
		&m.ImageURL,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new medicine into the database
func (r *Repository) Create(ctx context.Context, m *Medicine) (*Medicine, error) {
	query := `
		INSERT INTO medicines (user_id, name, manufacturer, batch_number, category,
			purchase_date, expiry_date, quantity, dosage, notes, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + medicineColumns

	created, err := scanMedicine(r.db.QueryRowContext(ctx, query,
		m.UserID, m.Name, m.Manufacturer, m.BatchNumber, m.Category,
		m.PurchaseDate, m.ExpiryDate, m.Quantity, m.Dosage, m.Notes, m.ImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	return created, nil
}

// GetByID retrieves a medicine by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	m, err := scanMedicine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}

	return m, nil
}

// ListByUserID retrieves a user's medicines ordered by expiry date
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE user_id = $1 ORDER BY expiry_date`

	return r.queryMedicines(ctx, query, userID)
}

// SearchByName retrieves a user's medicines whose name matches the keyword
func (r *Repository) SearchByName(ctx context.Context, userID int64, keyword string) ([]*Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY expiry_date`

	return r.queryMedicines(ctx, query, userID, keyword)
}

// FindExpiringOnOrBefore retrieves all medicines across users with an expiry
// date on or before the given calendar date
func (r *Repository) FindExpiringOnOrBefore(ctx context.Context, date time.Time) ([]*Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE expiry_date <= $1 ORDER BY expiry_date`

	return r.queryMedicines(ctx, query, date.Format(DateLayout))
}

// FindExpiringBetween retrieves all medicines across users with an expiry date
// strictly after startExclusive and up to and including endInclusive
func (r *Repository) FindExpiringBetween(ctx context.Context, startExclusive, endInclusive time.Time) ([]*Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE expiry_date > $1 AND expiry_date <= $2
		ORDER BY expiry_date`

	return r.queryMedicines(ctx, query, startExclusive.Format(DateLayout), endInclusive.Format(DateLayout))
}

// Update replaces the mutable fields of an existing medicine
func (r *Repository) Update(ctx context.Context, m *Medicine) (*Medicine, error) {
	query := `
		UPDATE medicines
		SET name = $2, manufacturer = $3, batch_number = $4, category = $5,
		    purchase_date = $6, expiry_date = $7, quantity = $8, dosage = $9,
		    notes = $10, image_url = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + medicineColumns

	updated, err := scanMedicine(r.db.QueryRowContext(ctx, query,
		m.ID, m.Name, m.Manufacturer, m.BatchNumber, m.Category,
		m.PurchaseDate, m.ExpiryDate, m.Quantity, m.Dosage, m.Notes, m.ImageURL,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}

	return updated, nil
}

// Delete removes a medicine from the database
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM medicines WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("medicine not found")
	}

	return nil
}

func (r *Repository) queryMedicines(ctx context.Context, query string, args ...any) ([]*Medicine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query medicines: %w", err)
	}
	defer rows.Close()

	var medicines []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, m)
	}

	return medicines, rows.Err()
}
