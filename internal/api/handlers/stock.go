// stock.go — обработчики склада крови: пополнение, списание, остатки.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/hemobank/donation-module/internal/api/errors"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

// StockHandler — обработчики endpoints склада.
type StockHandler struct {
	inventory *service.InventoryService
	logger    *slog.Logger
}

// NewStockHandler создаёт обработчик склада.
func NewStockHandler(inventory *service.InventoryService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		inventory: inventory,
		logger:    logger.With(slog.String("component", "stock_handler")),
	}
}

// stockRequest — тело запроса пополнения и списания.
type stockRequest struct {
	FacilityID string `json:"facility_id,omitempty"`
	BloodGroup string `json:"blood_group"`
	Quantity   int    `json:"quantity"`
}

// stockResponse — представление записи склада в API.
type stockResponse struct {
	FacilityID string `json:"facility_id"`
	BloodGroup string `json:"blood_group"`
	Quantity   int    `json:"quantity"`
	ExpiryAt   string `json:"expiry_at"`
	Expired    bool   `json:"expired,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

func stockEntryToResponse(e *model.BloodStockEntry, expired bool) stockResponse {
	return stockResponse{
		FacilityID: e.FacilityID,
		BloodGroup: string(e.BloodGroup),
		Quantity:   e.Quantity,
		ExpiryAt:   e.ExpiryAt.UTC().Format(time.RFC3339),
		Expired:    expired,
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// resolveFacility определяет учреждение операции:
// facility_id из JWT имеет приоритет над телом запроса.
func resolveFacility(w http.ResponseWriter, r *http.Request, bodyFacilityID string) (string, bool) {
	facilityID := bodyFacilityID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.FacilityID != "" {
		facilityID = claims.FacilityID
	}
	if facilityID == "" {
		apierrors.ValidationError(w, "не указано учреждение: нет facility_id в токене и запросе")
		return "", false
	}
	return facilityID, true
}

// Replenish — POST /api/v1/stock/replenish.
// Авторизация: facility, admin — на уровне middleware.
func (h *StockHandler) Replenish(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	facilityID, ok := resolveFacility(w, r, req.FacilityID)
	if !ok {
		return
	}

	entry, err := h.inventory.Replenish(r.Context(), facilityID, model.BloodGroup(req.BloodGroup), req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stockEntryToResponse(entry, false))
}

// Withdraw — POST /api/v1/stock/withdraw.
// Авторизация: facility, admin — на уровне middleware.
func (h *StockHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	facilityID, ok := resolveFacility(w, r, req.FacilityID)
	if !ok {
		return
	}

	entry, err := h.inventory.Withdraw(r.Context(), facilityID, model.BloodGroup(req.BloodGroup), req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stockEntryToResponse(entry, false))
}

// stockListResponse — остатки склада учреждения.
type stockListResponse struct {
	FacilityID string          `json:"facility_id"`
	Items      []stockResponse `json:"items"`
}

// List — GET /api/v1/stock.
// Авторизация: facility, admin — на уровне middleware.
// Учреждение — из JWT или query-параметра facility_id.
// Query-параметр blood_group сужает ответ до одной записи.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	facilityID, ok := resolveFacility(w, r, r.URL.Query().Get("facility_id"))
	if !ok {
		return
	}

	if group := r.URL.Query().Get("blood_group"); group != "" {
		item, err := h.inventory.Get(r.Context(), facilityID, model.BloodGroup(group))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stockListResponse{
			FacilityID: facilityID,
			Items:      []stockResponse{stockEntryToResponse(item.BloodStockEntry, item.Expired)},
		})
		return
	}

	items, err := h.inventory.ListByFacility(r.Context(), facilityID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := stockListResponse{FacilityID: facilityID, Items: make([]stockResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, stockEntryToResponse(item.BloodStockEntry, item.Expired))
	}

	writeJSON(w, http.StatusOK, resp)
}
