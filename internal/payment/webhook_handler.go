package payment

import (
	"encoding/json"
	"net/http"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
)

// WebhookHandler receives asynchronous gateway callbacks. The endpoint is
// unauthenticated because the gateway has no operator token; correlation and
// verification against the gateway stand in for auth.
type WebhookHandler struct {
	*transport.BaseHandler
	service *Service
}

func NewWebhookHandler(base *transport.BaseHandler, service *Service) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *WebhookHandler) HandleGatewayCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var dto GatewayCallbackDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.Warn("invalid gateway callback payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid callback payload")
		return
	}

	if dto.TransactionID == "" || dto.Authority == "" {
		h.WriteError(w, http.StatusBadRequest, "transaction_id and authority are required")
		return
	}

	if err := h.service.HandleGatewayCallback(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
