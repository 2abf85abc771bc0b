package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/session"
	"github.com/fjod/go_cart/swiftbuyz/pkg/logger"
	"go.uber.org/zap"
)

const (
	sourceNavigation = "navigation"
	sourceSession    = "session"
)

type OrdersHandler struct {
	sessions      *session.Registry
	confirmations cache.ConfirmationStore
	timeout       time.Duration
	logger        *zap.Logger
}

func NewOrdersHandler(sessions *session.Registry, confirmations cache.ConfirmationStore, timeout time.Duration, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		sessions:      sessions,
		confirmations: confirmations,
		timeout:       timeout,
		logger:        logger,
	}
}

type ConfirmationResponse struct {
	Source       string                      `json:"source"`
	Confirmation *domain.ConfirmationPayload `json:"confirmation"`
}

// GetConfirmation serves the in-memory navigation state, falling back to the
// session-scoped copy after a lost navigation (a hard refresh or a restart).
func (h *OrdersHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	sess := h.sessions.Get(ctx, userID)
	if payload, ok := sess.Confirmation(); ok {
		respondJSON(w, http.StatusOK, ConfirmationResponse{Source: sourceNavigation, Confirmation: payload})
		return
	}

	payload, err := h.confirmations.LoadConfirmation(ctx, userID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			respondError(w, http.StatusNotFound, "not_found", "no recent order")
			return
		}
		logger.WithContext(r.Context(), h.logger).Error("failed to load confirmation", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, ConfirmationResponse{Source: sourceSession, Confirmation: payload})
}
