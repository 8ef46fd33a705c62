package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/phenocheck/internal/config"
	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/store"
)

const testDictionary = "VARNAME,TYPE,MIN,MAX\nSUBJID,string,,\nAGE,integer,0,120\n"

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{RequestTimeout: 5 * time.Second},
		Validation: config.ValidationConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: 50 * time.Millisecond, Timeout: time.Minute, DefaultFormat: "csv"},
		Security:   config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *core.Service) {
	t.Helper()
	svc := core.NewService(
		store.NewMemoryStore(),
		core.NewRunLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime),
		core.Options{MaxFileSize: cfg.Validation.MaxFileSize},
	)
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, svc
}

type upload struct {
	field, name, content string
}

func validateRequest(t *testing.T, format string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/validate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type runJSON struct {
	ID       string   `json:"id"`
	FileName string   `json:"fileName"`
	Format   string   `json:"format"`
	Rows     int      `json:"rows"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Passed   bool     `json:"passed"`
}

// ============================================================================
// Validate Tests
// ============================================================================

func TestHandleValidate_Passed(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, validateRequest(t, "",
		upload{"file", "pheno.csv", "SUBJID,AGE\nS1,34\n"},
		upload{"dictionary", "dictionary.csv", testDictionary},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decode[runJSON](t, rec)
	assert.True(t, run.Passed)
	assert.Equal(t, "pheno.csv", run.FileName)
	assert.Equal(t, "csv", run.Format)
	assert.Equal(t, 1, run.Rows)
	assert.Equal(t, []string{}, run.Errors)
	assert.Equal(t, []string{}, run.Warnings)

	got := serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil))
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, run.ID, decode[runJSON](t, got).ID)
}

func TestHandleValidate_FindingsReturn200(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, validateRequest(t, "tsv",
		upload{"file", "pheno.txt", "SUBJID\tAGE\tEXTRA\nS1\t2.5\tx\n"},
		upload{"dictionary", "dictionary.csv", testDictionary},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decode[runJSON](t, rec)
	assert.False(t, run.Passed)
	assert.Equal(t, "tsv", run.Format)
	assert.Equal(t, []string{
		"The column 'EXTRA' (3rd column) is not defined in the data dictionary.",
		"The value for 'AGE' in the 1st row (2.5) should be an integer, not a decimal.",
	}, run.Errors)
}

func TestHandleValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(*config.Config)
		files    []upload
		format   string
		want     int
		wantCode string
	}{
		{
			name:     "missing dictionary",
			files:    []upload{{"file", "pheno.csv", "SUBJID\nS1\n"}},
			want:     http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name:     "missing data file",
			files:    []upload{{"dictionary", "dictionary.csv", testDictionary}},
			want:     http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name: "dictionary without variables",
			files: []upload{
				{"file", "pheno.csv", "SUBJID\nS1\n"},
				{"dictionary", "dictionary.csv", "VARNAME,TYPE\n"},
			},
			want:     http.StatusBadRequest,
			wantCode: "DICT001",
		},
		{
			name: "unknown format",
			files: []upload{
				{"file", "pheno.csv", "SUBJID\nS1\n"},
				{"dictionary", "dictionary.csv", testDictionary},
			},
			format:   "xlsx",
			want:     http.StatusBadRequest,
			wantCode: "FILE003",
		},
		{
			name: "data file over limit",
			cfg:  func(c *config.Config) { c.Validation.MaxFileSize = 8 },
			files: []upload{
				{"file", "pheno.csv", "SUBJID,AGE\nS1,34\n"},
				{"dictionary", "d.yaml", "variables:\n  - name: SUBJID\n"},
			},
			want:     http.StatusRequestEntityTooLarge,
			wantCode: "FILE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			srv, _ := newTestServer(t, cfg)

			rec := serve(srv, validateRequest(t, tt.format, tt.files...))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Action)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHandleValidate_NotMultipart(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(srv, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleValidate_Busy(t *testing.T) {
	srv, svc := newTestServer(t, testConfig())

	limiter := svc.Limiter()
	require.NoError(t, limiter.Acquire(context.Background()))
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()
	defer limiter.Release()

	rec := serve(srv, validateRequest(t, "",
		upload{"file", "pheno.csv", "SUBJID\nS1\n"},
		upload{"dictionary", "dictionary.csv", testDictionary},
	))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "RUN001", decode[ErrorResponse](t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

// ============================================================================
// Run Query Tests
// ============================================================================

func TestHandleGetRun_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	for _, path := range []string{
		"/api/runs/6f1c1f9e-8d1b-4a7e-9d51-0d3c1b1b7b00",
		"/api/runs/not-a-uuid",
	} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "RUN002", decode[ErrorResponse](t, rec).Code, path)
	}
}

func TestHandleListRuns(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		rec := serve(srv, validateRequest(t, "",
			upload{"file", name, "SUBJID,AGE\nS1,1\n"},
			upload{"dictionary", "dictionary.csv", testDictionary},
		))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Runs []runJSON `json:"runs"`
	}](t, rec)
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "c.csv", resp.Runs[0].FileName)
	assert.Equal(t, "b.csv", resp.Runs[1].FileName)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs?limit=bogus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct {
		Runs []runJSON `json:"runs"`
	}](t, rec).Runs, 3)
}

// ============================================================================
// Page Tests
// ============================================================================

func TestRunPage(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, validateRequest(t, "",
		upload{"file", "pheno<script>.csv", "AGE,SUBJID\n200,S1\n"},
		upload{"dictionary", "dictionary.csv", testDictionary},
	))
	require.Equal(t, http.StatusOK, rec.Code)
	run := decode[runJSON](t, rec)

	page := serve(srv, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")

	body := page.Body.String()
	assert.Contains(t, body, "pheno&lt;script&gt;.csv")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Failed")
	assert.Contains(t, body, "Errors (1)")
	assert.Contains(t, body, "Warnings (2)")
	assert.Contains(t, body, "It&#39;s recommended")

	index := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), `href="/runs/`+run.ID+`"`)
}

func TestRunPage_NotFoundRendersHTML(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/runs/6f1c1f9e-8d1b-4a7e-9d51-0d3c1b1b7b00", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "RUN002")
}

func TestIndex_Empty(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No runs yet")
}

// ============================================================================
// Middleware Wiring Tests
// ============================================================================

func TestHealthAndSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Status string                `json:"status"`
		Runs   core.RunLimiterStatus `json:"runs"`
	}](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Runs.MaxConcurrent)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	srv, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RUN005", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	health := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code, "health checks are not rate limited")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"s3cret"}
	srv, _ := newTestServer(t, cfg)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rec = serve(srv, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrRunNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyRuns))
}
