package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/service"
)

// DefaultRetentionDays is used by cleanup when no days parameter is given.
const DefaultRetentionDays = 30

// AdminHandler serves the operator endpoints: stats for trusted subnets
// and retention cleanup behind an admin token.
type AdminHandler struct {
	service service.BarcodeServiceIface
	timeout time.Duration
	logger  *zap.Logger
}

func NewAdmin(s service.BarcodeServiceIface, l *zap.Logger, timeout time.Duration) *AdminHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &AdminHandler{
		service: s,
		timeout: timeout,
		logger:  l,
	}
}

func (h *AdminHandler) Stats(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, stats)
}

// Cleanup deletes records older than ?days=N (default 30) and their artifacts.
func (h *AdminHandler) Cleanup(res http.ResponseWriter, req *http.Request) {
	days := DefaultRetentionDays
	if raw := req.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(res, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	retention, err := service.RetentionDays(days)
	if err != nil {
		writeError(res, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	resp, err := h.service.Cleanup(ctx, retention)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	h.logger.Info("cleanup finished", zap.Int("days", days), zap.Int("deleted", resp.Deleted))
	writeJSON(res, http.StatusOK, resp)
}
