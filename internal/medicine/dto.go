package medicine

// CreateMedicineRequest represents the request body for adding a medicine.
// Dates are calendar dates in YYYY-MM-DD form.
type CreateMedicineRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	BatchNumber  *string `json:"batch_number,omitempty"`
	Category     *string `json:"category,omitempty"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	ExpiryDate   string  `json:"expiry_date" validate:"required"`
	Quantity     int     `json:"quantity"`
	Dosage       *string `json:"dosage,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
}

// UpdateMedicineRequest replaces the mutable fields of a medicine
type UpdateMedicineRequest = CreateMedicineRequest

// MedicineResponse represents the response for a single medicine
type MedicineResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	BatchNumber  *string `json:"batch_number,omitempty"`
	Category     *string `json:"category,omitempty"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	ExpiryDate   string  `json:"expiry_date"`
	Quantity     int     `json:"quantity"`
	Dosage       *string `json:"dosage,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// DashboardStats aggregates a user's inventory by expiry proximity
type DashboardStats struct {
	Total        int `json:"total"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
	Safe         int `json:"safe"`
}

// ToResponse converts a Medicine model to a MedicineResponse DTO
func (m *Medicine) ToResponse() *MedicineResponse {
	resp := &MedicineResponse{
		ID:           m.ID,
		Name:         m.Name,
		Manufacturer: m.Manufacturer,
		BatchNumber:  m.BatchNumber,
		Category:     m.Category,
		ExpiryDate:   m.ExpiryDate.Format(DateLayout),
		Quantity:     m.Quantity,
		Dosage:       m.Dosage,
		Notes:        m.Notes,
		ImageURL:     m.ImageURL,
		CreatedAt:    m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if m.PurchaseDate != nil {
		purchase := m.PurchaseDate.Format(DateLayout)
		resp.PurchaseDate = &purchase
	}
	return resp
}
