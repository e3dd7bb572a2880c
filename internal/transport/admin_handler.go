package transport

import (
	"errors"
	"net/http"

	"multkits-catalog/internal/middleware"
	"multkits-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest carries the shared back-office password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the admin session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// AdminHandler handles back-office authentication
type AdminHandler struct {
	admin  service.AdminService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// RegisterRoutes registers the login route. rateLimiter guards the shared
// password against brute forcing.
func (h *AdminHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.With(rateLimiter).Post("/login", h.Login)
	})
}

// Login handles admin authentication
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.admin.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			h.logger.Warn("Admin login rejected", zap.String("remote_addr", r.RemoteAddr))
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		h.logger.Error("Admin login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("Admin logged in", zap.String("remote_addr", r.RemoteAddr))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.admin.SessionDuration().Seconds()),
	})
}
