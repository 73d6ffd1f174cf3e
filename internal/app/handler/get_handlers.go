package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/models"
)

type GetHandler struct {
	service service.BarcodeServiceIface
	timeout time.Duration
	logger  *zap.Logger
}

func NewGet(s service.BarcodeServiceIface, l *zap.Logger, timeout time.Duration) *GetHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GetHandler{
		service: s,
		timeout: timeout,
		logger:  l,
	}
}

// File streams a stored PNG artifact by filename.
func (h *GetHandler) File(res http.ResponseWriter, req *http.Request) {
	filename := chi.URLParam(req, "filename")

	f, err := h.service.OpenArtifact(filename)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	res.Header().Set("Content-Type", "image/png")
	http.ServeContent(res, req, filename, info.ModTime(), f)
}

// ByID returns the full record for a barcode identifier.
func (h *GetHandler) ByID(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	barcodeID := chi.URLParam(req, "barcodeID")
	h.logger.Debug("lookup barcode", zap.String("barcodeID", barcodeID))

	b, err := h.service.GetBarcode(ctx, barcodeID)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, b)
}

// Data returns the compact structured view of a barcode.
func (h *GetHandler) Data(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	d, err := h.service.GetBarcodeData(ctx, chi.URLParam(req, "barcodeID"))
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, d)
}

// List returns every barcode, newest first.
func (h *GetHandler) List(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	list, err := h.service.ListBarcodes(ctx)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, list)
}

func (h *GetHandler) Health(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, models.Health{Status: "healthy", Message: "Barcode generator is running"})
}

func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()
	if err := h.service.PingContext(ctx); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}
