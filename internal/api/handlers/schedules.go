// schedules.go — обработчики записей на донацию: создание, просмотр, отмена.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/hemobank/donation-module/internal/api/errors"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

// ScheduleHandler — обработчики endpoints записей на донацию.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	logger    *slog.Logger
}

// NewScheduleHandler создаёт обработчик записей на донацию.
func NewScheduleHandler(schedules *service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.With(slog.String("component", "schedule_handler")),
	}
}

// bookRequest — тело запроса создания записи.
type bookRequest struct {
	DonorID string `json:"donor_id,omitempty"`
	Center  string `json:"center"`
	// Date — дата приёма в формате YYYY-MM-DD
	Date string `json:"date"`
	// Time — время приёма в формате HH:MM
	Time string `json:"time"`
}

// scheduleResponse — представление записи на донацию в API.
type scheduleResponse struct {
	ID        string `json:"id"`
	DonorID   string `json:"donor_id"`
	Center    string `json:"center"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func scheduleToResponse(s *model.DonationSchedule) scheduleResponse {
	return scheduleResponse{
		ID:        s.ID,
		DonorID:   s.DonorID,
		Center:    s.Center,
		Date:      s.ScheduledOn.UTC().Format("2006-01-02"),
		Time:      s.ScheduledAt,
		Status:    s.Status,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// resolveDonor определяет донора операции: донор действует от своего
// имени (sub из JWT), администратор указывает donor_id явно.
func resolveDonor(w http.ResponseWriter, r *http.Request, explicitDonorID string) (string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil && claims.HasRole(middleware.RoleDonor) && !claims.HasRole(middleware.RoleAdmin) {
		return claims.Subject, true
	}
	if explicitDonorID == "" {
		apierrors.ValidationError(w, "donor_id обязателен")
		return "", false
	}
	return explicitDonorID, true
}

// Book — POST /api/v1/schedules.
// Авторизация: donor, admin — на уровне middleware.
func (h *ScheduleHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	donorID, ok := resolveDonor(w, r, req.DonorID)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		apierrors.ValidationError(w, "дата приёма не в формате YYYY-MM-DD")
		return
	}

	schedule, err := h.schedules.Book(r.Context(), service.BookInput{
		DonorID:  donorID,
		Center:   req.Center,
		Date:     date,
		TimeSlot: req.Time,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, scheduleToResponse(schedule))
}

// Upcoming — GET /api/v1/schedules/upcoming.
// Авторизация: donor, admin — на уровне middleware.
// Донор видит свою запись; администратор — по query-параметру donor_id.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	donorID, ok := resolveDonor(w, r, r.URL.Query().Get("donor_id"))
	if !ok {
		return
	}

	schedule, err := h.schedules.Upcoming(r.Context(), donorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scheduleToResponse(schedule))
}

// cancelRequest — тело запроса отмены (donor_id для администратора).
type cancelRequest struct {
	DonorID string `json:"donor_id,omitempty"`
}

// Cancel — POST /api/v1/schedules/{scheduleId}/cancel.
// Авторизация: donor, admin — на уровне middleware.
// Донор отменяет только свою запись.
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleId")

	// Тело опционально: донору donor_id не нужен.
	var req cancelRequest
	_ = decodeBodyOptional(r, &req)

	donorID, ok := resolveDonor(w, r, req.DonorID)
	if !ok {
		return
	}

	if err := h.schedules.Cancel(r.Context(), scheduleID, donorID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
