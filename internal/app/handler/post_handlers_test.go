package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/mocks"
	"github.com/atinyakov/barcoder/internal/models"
)

func newTestPostHandler(t *testing.T) (*PostHandler, *mocks.MockBarcodeServiceIface) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockBarcodeServiceIface(ctrl)

	return NewPost(mockService, zap.NewNop(), 0), mockService
}

func TestGenerate(t *testing.T) {
	ok := &models.GenerateResponse{
		Success:   true,
		Message:   "Barcode generated successfully",
		BarcodeID: "QR_20250101120000_569",
		Filename:  "qr_20250101_120000.png",
		Data:      "ABC-123",
		Type:      "qr",
		Source:    "web",
	}

	tests := []struct {
		name         string
		contentType  string
		body         string
		callService  bool
		mockResponse *models.GenerateResponse
		mockErr      error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Valid request",
			contentType:  "application/json",
			body:         `{"data":"ABC-123","metadata":{"product_id":"AB1"}}`,
			callService:  true,
			mockResponse: ok,
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"message":"Barcode generated successfully","barcode_id":"QR_20250101120000_569","filename":"qr_20250101_120000.png","data":"ABC-123","type":"qr","source":"web"}`,
		},
		{
			name:         "Missing data",
			contentType:  "application/json",
			body:         `{"type":"qr"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"data is required"}`,
		},
		{
			name:         "Blank data",
			contentType:  "application/json",
			body:         `{"data":"  "}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"data is required"}`,
		},
		{
			name:         "Type with punctuation",
			contentType:  "application/json",
			body:         `{"data":"x","type":"../qr"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"type is invalid"}`,
		},
		{
			name:         "Wrong content type",
			contentType:  "text/plain",
			body:         `data`,
			expectedCode: http.StatusUnsupportedMediaType,
		},
		{
			name:         "Broken JSON",
			contentType:  "application/json",
			body:         `{"data":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Empty body",
			contentType:  "application/json",
			body:         ``,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Request body must not be empty"}`,
		},
		{
			name:         "Metadata not an object",
			contentType:  "application/json",
			body:         `{"data":"x","metadata":[1]}`,
			callService:  true,
			mockErr:      fmt.Errorf("%w: metadata must be a JSON object", models.ErrValidation),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Render failure",
			contentType:  "application/json",
			body:         `{"data":"x","type":"code128"}`,
			callService:  true,
			mockErr:      fmt.Errorf("render code128: %w", models.ErrRender),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"internal server error"}`,
		},
		{
			name:         "Duplicate identifier",
			contentType:  "application/json",
			body:         `{"data":"x"}`,
			callService:  true,
			mockErr:      fmt.Errorf("insert QR_20250101120000_000: %w", models.ErrDuplicateID),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newTestPostHandler(t)

			if tt.callService {
				mockService.EXPECT().
					Generate(gomock.Any(), gomock.Any()).
					Return(tt.mockResponse, tt.mockErr).
					Times(1)
			}

			req := httptest.NewRequest(http.MethodPost, "/generate_barcode", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			handler.Generate(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestGeneratePassesRequestThrough(t *testing.T) {
	handler, mockService := newTestPostHandler(t)

	mockService.EXPECT().
		Generate(gomock.Any(), models.GenerateRequest{
			Data:     "ABC-123",
			Type:     "code128",
			Source:   "scanner",
			Metadata: json.RawMessage(`{"price":"9.99"}`),
		}).
		Return(&models.GenerateResponse{Success: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate_barcode",
		strings.NewReader(`{"data":"ABC-123","type":"code128","source":"scanner","metadata":{"price":"9.99"}}`))
	rr := httptest.NewRecorder()

	handler.Generate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
