package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
)

// ServiceAPI is the surface the HTTP layer needs from the auth service.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.service.Authenticate(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Middleware validates the Bearer token and injects the operator id into the
// request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			h.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := h.service.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.From(r.Context()).Warn("token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithOperatorID(r.Context(), strconv.FormatInt(claims.OperatorID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
