// Пакет handlers — HTTP-обработчики Donation Module.
// Тонкий слой: разбор запроса, вызов сервиса, маппинг ошибок.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apierrors "github.com/bigkaa/hemobank/donation-module/internal/api/errors"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
// Единая точка маппинга: обработчики не знают о статус-кодах ошибок.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrCooldownActive):
		apierrors.CooldownActive(w, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		apierrors.InsufficientStock(w, err.Error())
	case errors.Is(err, service.ErrAlreadyScheduled):
		apierrors.AlreadyScheduled(w, err.Error())
	case errors.Is(err, service.ErrFacilityNotApproved):
		apierrors.FacilityNotApproved(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	default:
		apierrors.InternalError(w, "внутренняя ошибка сервера")
	}
}

// decodeBody разбирает JSON-тело запроса в dst.
// При ошибке пишет 400 и возвращает false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса: "+err.Error())
		return false
	}
	return true
}

// decodeBodyOptional разбирает JSON-тело, если оно есть.
// Пустое тело — не ошибка.
func decodeBodyOptional(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

// paginationDefaults нормализует параметры пагинации.
func paginationDefaults(limit, offset int) (limitVal, offsetVal int) {
	if limit < 1 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
