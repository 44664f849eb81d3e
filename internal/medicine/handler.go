package medicine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/medtrack/pkg/middleware"
	"github.com/fkhayef/medtrack/pkg/response"
)

// Handler handles HTTP requests for medicine operations
type Handler struct {
	service *Service
}

// NewHandler creates a new medicine handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for medicine endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /medicines
// @Summary      Add a medicine
// @Description  Record a new medicine with its expiry date
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMedicineRequest true "Medicine creation request"
// @Success      201 {object} response.APIResponse{data=MedicineResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /medicines [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.ExpiryDate == "" {
		response.BadRequest(w, "Name and expiry date are required")
		return
	}

	m, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create medicine")
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// List handles GET /medicines
// @Summary      List medicines
// @Description  Get all of the current user's medicines ordered by expiry date
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]MedicineResponse}
// @Router       /medicines [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	medicines, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list medicines")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(medicines))
}

// Search handles GET /medicines/search
// @Summary      Search medicines
// @Description  Search the current user's medicines by name
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "Search keyword"
// @Success      200 {object} response.APIResponse{data=[]MedicineResponse}
// @Router       /medicines/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	medicines, err := h.service.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		response.InternalError(w, "Failed to search medicines")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(medicines))
}

// Dashboard handles GET /medicines/dashboard
// @Summary      Dashboard stats
// @Description  Count the current user's medicines by expiry proximity
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=DashboardStats}
// @Router       /medicines/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	stats, err := h.service.DashboardStats(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute dashboard stats")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// GetByID handles GET /medicines/{id}
// @Summary      Get medicine by ID
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Medicine ID"
// @Success      200 {object} response.APIResponse{data=MedicineResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /medicines/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid medicine ID")
		return
	}

	m, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get medicine")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// Update handles PUT /medicines/{id}
// @Summary      Update a medicine
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Medicine ID"
// @Param        request body UpdateMedicineRequest true "Medicine update request"
// @Success      200 {object} response.APIResponse{data=MedicineResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /medicines/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid medicine ID")
		return
	}

	var req UpdateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMedicineNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidDate):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to update medicine")
		}
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// Delete handles DELETE /medicines/{id}
// @Summary      Delete a medicine
// @Description  Delete a medicine and its notifications
// @Tags         medicines
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Medicine ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /medicines/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid medicine ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete medicine")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Medicine deleted successfully"})
}

func toResponses(medicines []*Medicine) []*MedicineResponse {
	responses := make([]*MedicineResponse, len(medicines))
	for i, m := range medicines {
		responses[i] = m.ToResponse()
	}
	return responses
}
