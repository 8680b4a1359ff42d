// donors.go — обработчики доноров: регистрация, профиль, допуск, история.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/hemobank/donation-module/internal/api/errors"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

// DonorHandler — обработчики endpoints доноров.
type DonorHandler struct {
	donors      *service.DonorService
	eligibility *service.EligibilityService
	logger      *slog.Logger
}

// NewDonorHandler создаёт обработчик доноров.
func NewDonorHandler(
	donors *service.DonorService,
	eligibility *service.EligibilityService,
	logger *slog.Logger,
) *DonorHandler {
	return &DonorHandler{
		donors:      donors,
		eligibility: eligibility,
		logger:      logger.With(slog.String("component", "donor_handler")),
	}
}

// donorRequest — тело запроса регистрации и обновления донора.
type donorRequest struct {
	FullName   string  `json:"full_name"`
	Age        int     `json:"age"`
	WeightKg   float64 `json:"weight_kg"`
	BloodGroup string  `json:"blood_group"`
}

// donorResponse — представление донора в API.
type donorResponse struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	Age            int     `json:"age"`
	WeightKg       float64 `json:"weight_kg"`
	BloodGroup     string  `json:"blood_group"`
	LastDonationAt *string `json:"last_donation_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func donorToResponse(d *model.Donor) donorResponse {
	resp := donorResponse{
		ID:         d.ID,
		FullName:   d.FullName,
		Age:        d.Age,
		WeightKg:   d.WeightKg,
		BloodGroup: string(d.BloodGroup),
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.LastDonationAt != nil {
		s := d.LastDonationAt.UTC().Format(time.RFC3339)
		resp.LastDonationAt = &s
	}
	return resp
}

// Register — POST /api/v1/donors.
// Авторизация: facility, admin — на уровне middleware.
func (h *DonorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req donorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	donor, err := h.donors.Register(r.Context(), service.RegisterInput{
		FullName:   req.FullName,
		Age:        req.Age,
		WeightKg:   req.WeightKg,
		BloodGroup: model.BloodGroup(req.BloodGroup),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, donorToResponse(donor))
}

// Update — PUT /api/v1/donors/{donorId}.
// Авторизация: facility, admin — на уровне middleware.
func (h *DonorHandler) Update(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")

	var req donorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Учреждение актора (из JWT) — для журнала событий.
	facilityID := ""
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		facilityID = claims.FacilityID
	}

	donor, err := h.donors.UpdateProfile(r.Context(), donorID, facilityID, service.RegisterInput{
		FullName:   req.FullName,
		Age:        req.Age,
		WeightKg:   req.WeightKg,
		BloodGroup: model.BloodGroup(req.BloodGroup),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, donorToResponse(donor))
}

// eligibilityResponse — представление результата проверки допуска.
type eligibilityResponse struct {
	DonorID        string  `json:"donor_id"`
	Eligible       bool    `json:"eligible"`
	Reason         string  `json:"reason,omitempty"`
	NextEligibleAt *string `json:"next_eligible_at,omitempty"`
}

// Eligibility — GET /api/v1/donors/{donorId}/eligibility.
// Авторизация: donor, facility, admin — на уровне middleware.
func (h *DonorHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")

	result, err := h.eligibility.Check(r.Context(), donorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := eligibilityResponse{
		DonorID:  donorID,
		Eligible: result.Eligible,
		Reason:   result.Reason,
	}
	if result.NextEligibleAt != nil {
		s := result.NextEligibleAt.UTC().Format(time.RFC3339)
		resp.NextEligibleAt = &s
	}

	writeJSON(w, http.StatusOK, resp)
}

// donationResponse — представление донации в API.
type donationResponse struct {
	ID         string  `json:"id"`
	DonorID    string  `json:"donor_id"`
	FacilityID string  `json:"facility_id"`
	BloodGroup string  `json:"blood_group"`
	Quantity   int     `json:"quantity"`
	Remarks    *string `json:"remarks,omitempty"`
	Verified   bool    `json:"verified"`
	DonatedAt  string  `json:"donated_at"`
}

func donationToResponse(d *model.Donation) donationResponse {
	return donationResponse{
		ID:         d.ID,
		DonorID:    d.DonorID,
		FacilityID: d.FacilityID,
		BloodGroup: string(d.BloodGroup),
		Quantity:   d.Quantity,
		Remarks:    d.Remarks,
		Verified:   d.Verified,
		DonatedAt:  d.DonatedAt.UTC().Format(time.RFC3339),
	}
}

// historyResponse — история донаций с пагинацией.
type historyResponse struct {
	Items  []donationResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// History — GET /api/v1/donors/{donorId}/donations.
// Авторизация: donor, facility, admin — на уровне middleware.
// Донор видит только свою историю.
func (h *DonorHandler) History(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")

	// Донор не может читать чужую историю.
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		if claims.HasRole(middleware.RoleDonor) && !claims.HasAnyRole(middleware.RoleFacility, middleware.RoleAdmin) &&
			claims.Subject != donorID {
			apierrors.Forbidden(w, "История донаций доступна только её владельцу")
			return
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, offset = paginationDefaults(limit, offset)

	list, total, err := h.donors.History(r.Context(), donorID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]donationResponse, 0, len(list))
	for _, d := range list {
		items = append(items, donationToResponse(d))
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
