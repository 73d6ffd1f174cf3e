package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/clock"
	"github.com/atinyakov/barcoder/internal/models"
	"github.com/atinyakov/barcoder/internal/storage"
	"github.com/atinyakov/barcoder/internal/symbol"
)

const adminSecret = "test-admin-secret"

type testServer struct {
	*httptest.Server
	clock *clock.Fake
	auth  *service.Auth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	repo, err := storage.CreateMemoryStorage()
	require.NoError(t, err)
	artifacts, err := storage.NewArtifactStore(filepath.Join(t.TempDir(), "barcodes"), logger)
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := service.NewBarcode(repo, artifacts, symbol.NewRenderer(logger), clk, logger, service.Options{CacheSize: 8, CacheTTL: time.Minute})
	// tokens are validated against the wall clock
	auth := service.NewAuth(adminSecret, clock.Real())

	r := Init(svc, auth, logger, Options{TrustedSubnet: "10.0.0.0/8", RequestTimeout: time.Second})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, clock: clk, auth: auth}
}

func (s *testServer) generate(t *testing.T, body string) models.GenerateResponse {
	t.Helper()

	resp, err := http.Post(s.URL+"/generate_barcode", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.GenerateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGenerateAndFetch(t *testing.T) {
	srv := newTestServer(t)

	gen := srv.generate(t, `{"data":"WIDGET-001","metadata":{"product_name":"Widget","product_id":"AB1","price":"9.99","location":"1,2,3"}}`)
	assert.True(t, gen.Success)
	assert.Equal(t, "QR_20250101120000_569", gen.BarcodeID)
	assert.Equal(t, "qr_20250101_120000.png", gen.Filename)

	t.Run("image", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/get_barcode/" + gen.Filename)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Empty(t, resp.Header.Get("Content-Encoding"))

		img, err := png.Decode(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
	})

	t.Run("record", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/get_barcode_by_id/" + gen.BarcodeID)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rec map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
		assert.Equal(t, "WIDGET-001", rec["data"])
		assert.Equal(t, 9.99, rec["price"])
		assert.Equal(t, 3.0, rec["location_z"])
		assert.Equal(t, "Widget", rec["metadata"].(map[string]any)["product_name"])
		assert.Nil(t, rec["category"])
	})

	t.Run("data view", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/get_barcode_data/" + gen.BarcodeID)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data models.BarcodeData
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		assert.True(t, data.Success)
		assert.Equal(t, "qr", data.Type)
		assert.Equal(t, "web", data.Source)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/list_barcodes")
		require.NoError(t, err)
		defer resp.Body.Close()

		var list models.BarcodeList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Len(t, list.Barcodes, 1)
		assert.Equal(t, gen.BarcodeID, list.Barcodes[0].BarcodeID)
	})
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/get_barcode/missing.png", "/get_barcode_by_id/QR_missing", "/get_barcode_data/QR_missing"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.JSONEq(t, `{"error":"barcode not found"}`, string(body), path)
	}
}

func TestUnknownRoutesAnswerJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/no/such/route")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"route not found"}`, string(body))

	resp, err = http.Get(srv.URL + "/generate_barcode")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.JSONEq(t, `{"error":"method not allowed"}`, string(body))
}

func TestGenerateRejectsBlankData(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/generate_barcode", "application/json", strings.NewReader(`{"data":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGzipRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	_, _ = gz.Write([]byte(`{"data":"ABC-123","type":"code128"}`))
	require.NoError(t, gz.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/generate_barcode", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	gr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	var out models.GenerateResponse
	require.NoError(t, json.NewDecoder(gr).Decode(&out))
	assert.Equal(t, "code128", out.Type)
}

func TestHealthAndPing(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"healthy","message":"Barcode generator is running"}`, string(body))

	resp, err = http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInternalStatsRequiresTrustedSubnet(t *testing.T) {
	srv := newTestServer(t)
	srv.generate(t, `{"data":"x","source":"scanner"}`)

	tests := []struct {
		name   string
		realIP string
		want   int
	}{
		{name: "trusted", realIP: "10.1.2.3", want: http.StatusOK},
		{name: "outside", realIP: "192.168.1.1", want: http.StatusForbidden},
		{name: "no header", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/internal/stats", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusOK {
				var stats models.Stats
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
				assert.Equal(t, 1, stats.Total)
				assert.Equal(t, map[string]int{"scanner": 1}, stats.BySource)
				assert.Equal(t, map[string]int{"N/A": 1}, stats.ByCategory)
			}
		})
	}
}

func TestAdminCleanup(t *testing.T) {
	srv := newTestServer(t)
	old := srv.generate(t, `{"data":"old"}`)
	srv.clock.Advance(10 * 24 * time.Hour)
	srv.generate(t, `{"data":"fresh"}`)

	call := func(token string) *http.Response {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/cleanup?days=5", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := call("")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := srv.auth.BuildJWTString("ops")
	require.NoError(t, err)

	resp = call(token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.CleanupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, models.CleanupResponse{Deleted: 1, ArtifactsRemoved: 1}, out)

	gone, err := http.Get(srv.URL + "/get_barcode_by_id/" + old.BarcodeID)
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestAdminRoutesAbsentWithoutAuth(t *testing.T) {
	repo, _ := storage.CreateMemoryStorage()
	svc := service.NewBarcode(repo, nil, nil, clock.Real(), zap.NewNop(), service.Options{})
	srv := httptest.NewServer(Init(svc, nil, zap.NewNop(), Options{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/admin/cleanup", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.generate(t, `{"data":"x"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "barcoder_http_requests_total")
	assert.Contains(t, string(body), "barcoder_barcodes_generated_total")
}
