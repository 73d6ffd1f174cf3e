package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/mocks"
	"github.com/atinyakov/barcoder/internal/models"
)

func createTestHandler(mockService *mocks.MockBarcodeServiceIface) *GetHandler {
	logger, _ := zap.NewDevelopment()
	return NewGet(mockService, logger, time.Second)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func decodeBody[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockBarcodeServiceIface(ctrl)
	handler := createTestHandler(mockService)

	name := "Widget"
	tests := []struct {
		name         string
		barcodeID    string
		mockReturn   *models.Barcode
		mockErr      error
		expectedCode int
		wantError    string
	}{
		{
			name:         "Found",
			barcodeID:    "QR_20250101120000_569",
			mockReturn:   &models.Barcode{ID: 1, BarcodeID: "QR_20250101120000_569", ProductName: &name},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Not found",
			barcodeID:    "QR_missing",
			mockErr:      fmt.Errorf("find QR_missing: %w", models.ErrNotFound),
			expectedCode: http.StatusNotFound,
			wantError:    "barcode not found",
		},
		{
			name:         "Storage failure",
			barcodeID:    "QR_broken",
			mockErr:      fmt.Errorf("query QR_broken: %w", errors.New("open /var/lib/barcoder.db: disk I/O error")),
			expectedCode: http.StatusInternalServerError,
			wantError:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.EXPECT().GetBarcode(gomock.Any(), tt.barcodeID).Return(tt.mockReturn, tt.mockErr)

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/get_barcode_by_id/"+tt.barcodeID, nil), "barcodeID", tt.barcodeID)
			w := httptest.NewRecorder()

			handler.ByID(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			if tt.mockErr == nil {
				got := decodeBody[map[string]any](t, resp.Body)
				assert.Equal(t, tt.barcodeID, got["barcode_id"])
				assert.Equal(t, "Widget", got["product_name"])
				assert.Nil(t, got["price"])
				return
			}

			got := decodeBody[models.ErrorResponse](t, resp.Body)
			assert.Equal(t, tt.wantError, got.Error)
			assert.NotContains(t, got.Error, tt.barcodeID)
		})
	}
}

func TestData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockBarcodeServiceIface(ctrl)
	handler := createTestHandler(mockService)

	t.Run("Found", func(t *testing.T) {
		mockService.EXPECT().GetBarcodeData(gomock.Any(), "CODE128_20250101120000_000").Return(&models.BarcodeData{
			Success:   true,
			BarcodeID: "CODE128_20250101120000_000",
			Data:      "ABC-123",
			Type:      "code128",
			Metadata:  json.RawMessage(`{}`),
			Source:    "web",
		}, nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/get_barcode_data/x", nil), "barcodeID", "CODE128_20250101120000_000")
		w := httptest.NewRecorder()

		handler.Data(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		got := decodeBody[map[string]any](t, w.Body)
		assert.Equal(t, true, got["success"])
		assert.Equal(t, map[string]any{}, got["metadata"])
	})

	t.Run("Not found", func(t *testing.T) {
		mockService.EXPECT().GetBarcodeData(gomock.Any(), "nope").Return(nil, models.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/get_barcode_data/nope", nil), "barcodeID", "nope")
		w := httptest.NewRecorder()

		handler.Data(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockBarcodeServiceIface(ctrl)
	handler := createTestHandler(mockService)

	t.Run("Empty", func(t *testing.T) {
		mockService.EXPECT().ListBarcodes(gomock.Any()).Return(&models.BarcodeList{Barcodes: []models.Barcode{}}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/list_barcodes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"barcodes":[]}`, w.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		mockService.EXPECT().ListBarcodes(gomock.Any()).Return(nil, errors.New("db error"))

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/list_barcodes", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockBarcodeServiceIface(ctrl)
	handler := createTestHandler(mockService)

	t.Run("Served", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qr_20250101_120000.png")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG fake"), 0o600))
		f, err := os.Open(path)
		require.NoError(t, err)

		mockService.EXPECT().OpenArtifact("qr_20250101_120000.png").Return(f, nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/get_barcode/qr_20250101_120000.png", nil), "filename", "qr_20250101_120000.png")
		w := httptest.NewRecorder()

		handler.File(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "\x89PNG fake", w.Body.String())
	})

	t.Run("Missing", func(t *testing.T) {
		mockService.EXPECT().OpenArtifact("nope.png").Return(nil, models.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/get_barcode/nope.png", nil), "filename", "nope.png")
		w := httptest.NewRecorder()

		handler.File(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"barcode not found"}`, w.Body.String())
	})
}

func TestHealth(t *testing.T) {
	handler := NewGet(nil, zap.NewNop(), 0)

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"Barcode generator is running"}`, w.Body.String())
}

func TestPingDB(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockBarcodeServiceIface(ctrl)
	handler := createTestHandler(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.EXPECT().PingContext(gomock.Any()).Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()

		handler.PingDB(w, req)

		resp := w.Result()
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Failure", func(t *testing.T) {
		mockService.EXPECT().PingContext(gomock.Any()).Return(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()

		handler.PingDB(w, req)

		resp := w.Result()
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestFallbackRoutes(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		expectedCode int
		expectedBody string
	}{
		{name: "Unknown route", handler: NotFound, expectedCode: http.StatusNotFound, expectedBody: `{"error":"route not found"}`},
		{name: "Wrong method", handler: MethodNotAllowed, expectedCode: http.StatusMethodNotAllowed, expectedBody: `{"error":"method not allowed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
