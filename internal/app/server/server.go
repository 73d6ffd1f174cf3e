// Package server assembles the chi router of the barcode service.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/handler"
	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/middleware"
)

// Options tunes the routes mounted by Init.
type Options struct {
	// TrustedSubnet is the CIDR allowed to read /api/internal/stats.
	TrustedSubnet string

	// RequestTimeout bounds every service call made by a handler.
	RequestTimeout time.Duration
}

// Init builds the router. Admin routes are mounted only when auth is non-nil.
func Init(svc service.BarcodeServiceIface, auth service.AuthIface, logger *zap.Logger, opts Options) *chi.Mux {
	getHandler := handler.NewGet(svc, logger, opts.RequestTimeout)
	postHandler := handler.NewPost(svc, logger, opts.RequestTimeout)
	adminHandler := handler.NewAdmin(svc, logger, opts.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Content-Encoding", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithGZIPResponse)
		r.Use(middleware.WithGZIPRequest)

		r.Post("/generate_barcode", postHandler.Generate)
		r.Get("/get_barcode/{filename}", getHandler.File)
		r.Get("/get_barcode_by_id/{barcodeID}", getHandler.ByID)
		r.Get("/get_barcode_data/{barcodeID}", getHandler.Data)
		r.Get("/list_barcodes", getHandler.List)
		r.Get("/health", getHandler.Health)
		r.Get("/ping", getHandler.PingDB)

		r.With(middleware.WithSubnet(opts.TrustedSubnet)).Get("/api/internal/stats", adminHandler.Stats)

		if auth != nil {
			r.With(middleware.WithAdminJWT(auth)).Post("/api/admin/cleanup", adminHandler.Cleanup)
		}
	})

	r.Handle("/metrics", promhttp.Handler())

	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.NotFound(handler.NotFound)

	return r
}
