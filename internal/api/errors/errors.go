// Пакет errors — конструкторы стандартных ошибок в формате Hemobank.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок API.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeCooldownActive      = "COOLDOWN_ACTIVE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeAlreadyScheduled    = "ALREADY_SCHEDULED"
	CodeFacilityNotApproved = "FACILITY_NOT_APPROVED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате Hemobank.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// Conflict — 409 конфликт (дублирующийся ресурс).
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// CooldownActive — 409 период восстановления донора не завершён.
func CooldownActive(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeCooldownActive, message)
}

// InsufficientStock — 409 недостаточно единиц на складе.
func InsufficientStock(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeInsufficientStock, message)
}

// AlreadyScheduled — 409 у донора уже есть активная запись.
func AlreadyScheduled(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeAlreadyScheduled, message)
}

// FacilityNotApproved — 403 учреждение не одобрено администратором.
func FacilityNotApproved(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeFacilityNotApproved, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
