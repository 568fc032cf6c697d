package reservation

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
)

// ServiceAPI is the surface the HTTP layer needs from the settlement service.
type ServiceAPI interface {
	GetPaymentInfo(ctx context.Context, reservationID int64) (*PaymentInfoResponse, error)
	SubmitPayment(ctx context.Context, reservationID int64, dto SubmitPaymentDTO) (*SubmitPaymentResponse, error)
	ListReservations(ctx context.Context, page, perPage int) ([]*ReservationResponse, int64, error)
	GetReservation(ctx context.Context, id int64) (*ReservationResponse, error)
	CreateReservation(ctx context.Context, dto CreateReservationDTO) (*ReservationResponse, error)
	CancelReservation(ctx context.Context, id int64) (*ReservationResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		service:     service,
	}
}

// GetPaymentInfo returns the reservation, its payment history and the
// derived balance figures.
func (h *Handler) GetPaymentInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	info, err := h.service.GetPaymentInfo(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var dto SubmitPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.From(r.Context()).Warn("invalid payment request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.SubmitPayment(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	reservations, total, err := h.service.ListReservations(r.Context(), page, perPage)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": reservations,
		"total":        total,
	})
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var dto CreateReservationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.From(r.Context()).Warn("invalid reservation request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateReservation(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.service.CancelReservation(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) reservationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid reservation id")
		return 0, false
	}
	return id, true
}
