// facilities.go — обработчики учреждений: регистрация, статус, журнал событий.
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

// FacilityHandler — обработчики endpoints учреждений.
type FacilityHandler struct {
	facilities *service.FacilityService
	logger     *slog.Logger
}

// NewFacilityHandler создаёт обработчик учреждений.
func NewFacilityHandler(facilities *service.FacilityService, logger *slog.Logger) *FacilityHandler {
	return &FacilityHandler{
		facilities: facilities,
		logger:     logger.With(slog.String("component", "facility_handler")),
	}
}

// facilityRequest — тело запроса регистрации учреждения.
type facilityRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// facilityResponse — представление учреждения в API.
type facilityResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func facilityToResponse(f *model.Facility) facilityResponse {
	return facilityResponse{
		ID:        f.ID,
		Name:      f.Name,
		Kind:      f.Kind,
		Status:    f.Status,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Register — POST /api/v1/facilities.
// Авторизация: admin — на уровне middleware.
func (h *FacilityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	facility, err := h.facilities.Register(r.Context(), req.Name, req.Kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, facilityToResponse(facility))
}

// statusRequest — тело запроса изменения статуса учреждения.
type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus — PUT /api/v1/facilities/{facilityId}/status.
// Авторизация: admin — на уровне middleware.
func (h *FacilityHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facilityId")

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.facilities.SetStatus(r.Context(), facilityID, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loginRequest — тело запроса фиксации входа.
// facility_id и actor нужны только в dev-режиме без JWT.
type loginRequest struct {
	FacilityID string `json:"facility_id,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// RecordLogin — POST /api/v1/facilities/login.
// Авторизация: facility, admin — на уровне middleware.
// Пишет событие входа актора учреждения в журнал событий.
func (h *FacilityHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	_ = decodeBodyOptional(r, &req)

	facilityID := req.FacilityID
	actor := req.Actor
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		if claims.FacilityID != "" {
			facilityID = claims.FacilityID
		}
		if actor == "" {
			actor = claims.PreferredUsername
			if actor == "" {
				actor = claims.Subject
			}
		}
	}
	if facilityID == "" {
		apierrors.ValidationError(w, "не указано учреждение: нет facility_id в токене и теле запроса")
		return
	}
	if actor == "" {
		actor = "unknown"
	}

	if err := h.facilities.RecordLogin(r.Context(), facilityID, actor); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// auditEntryResponse — представление записи журнала в API.
type auditEntryResponse struct {
	ID          int64   `json:"id"`
	EventType   string  `json:"event_type"`
	Description string  `json:"description"`
	ReferenceID *string `json:"reference_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// auditResponse — журнал событий учреждения.
type auditResponse struct {
	FacilityID string               `json:"facility_id"`
	Items      []auditEntryResponse `json:"items"`
}

// Audit — GET /api/v1/facilities/{facilityId}/audit.
// Авторизация: admin — на уровне middleware.
func (h *FacilityHandler) Audit(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facilityId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.facilities.Audit(r.Context(), facilityID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := auditResponse{FacilityID: facilityID, Items: make([]auditEntryResponse, 0, len(list))}
	for _, e := range list {
		resp.Items = append(resp.Items, auditEntryResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			Description: e.Description,
			ReferenceID: e.ReferenceID,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
