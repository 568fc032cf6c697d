package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
)

// BaseHandler carries the response helpers shared by all HTTP handlers.
// Every payload goes out in the same envelope: {"success": true, "data": ...}
// on the happy path and {"success": false, "error": "..."} on failures.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func (h *BaseHandler) WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data}); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
	}
}

func (h *BaseHandler) WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: message}); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// HandleServiceError maps service layer errors onto HTTP responses. Typed
// application errors keep their status code and machine readable code;
// anything else becomes an opaque 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.StatusCode)
		envelope := errorEnvelope{
			Success: false,
			Error:   appErr.GetDetailedMessage(),
			Code:    string(appErr.Code),
			Details: appErr.Details,
		}
		if encErr := json.NewEncoder(w).Encode(envelope); encErr != nil {
			h.Logger.Error("failed to encode error response", "error", encErr)
		}
		return
	}

	h.Logger.Error("unhandled service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func (h *BaseHandler) HandleError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.Logger.Error(message, "error", err)
	}
	h.WriteError(w, statusCode, message)
}
