// donations.go — обработчик фиксации донаций POST /api/v1/donations.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/hemobank/donation-module/internal/api/errors"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

// DonationHandler — обработчик фиксации донаций.
type DonationHandler struct {
	donations *service.DonationService
	logger    *slog.Logger
}

// NewDonationHandler создаёт обработчик донаций.
func NewDonationHandler(donations *service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		donations: donations,
		logger:    logger.With(slog.String("component", "donation_handler")),
	}
}

// recordRequest — тело запроса фиксации донации.
type recordRequest struct {
	DonorID    string  `json:"donor_id"`
	FacilityID string  `json:"facility_id,omitempty"`
	Quantity   int     `json:"quantity"`
	BloodGroup string  `json:"blood_group,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

// Record — POST /api/v1/donations.
// Авторизация: facility, admin — на уровне middleware.
// Актор учреждения фиксирует донацию от имени своего учреждения:
// facility_id из JWT имеет приоритет над телом запроса.
func (h *DonationHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	facilityID := req.FacilityID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.FacilityID != "" {
		facilityID = claims.FacilityID
	}
	if facilityID == "" {
		apierrors.ValidationError(w, "не указано учреждение: нет facility_id в токене и теле запроса")
		return
	}
	if req.DonorID == "" {
		apierrors.ValidationError(w, "donor_id обязателен")
		return
	}

	donation, err := h.donations.Record(r.Context(), service.RecordInput{
		DonorID:    req.DonorID,
		FacilityID: facilityID,
		Quantity:   req.Quantity,
		BloodGroup: model.BloodGroup(req.BloodGroup),
		Remarks:    req.Remarks,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, donationToResponse(donation))
}
