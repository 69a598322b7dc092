package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/context-service/internal/adapter/memstore"
	"github.com/user/context-service/internal/delivery/http/handler"
	"github.com/user/context-service/internal/delivery/http/response"
	"github.com/user/context-service/internal/delivery/http/router"
	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/ratelimit"
	"github.com/user/context-service/internal/usecase"
	"github.com/user/context-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeGenerator struct {
	raw string
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.raw, f.err
}

const generatorOutput = `{
	"company_name": "Acme",
	"company_url": "https://acme.io",
	"industry": "Software",
	"description": "Build tools.",
	"products": [],
	"target_audience": "Developers",
	"competitors": [],
	"tone": "professional",
	"pain_points": [],
	"value_propositions": [],
	"use_cases": [],
	"content_themes": []
}`

// newTestServer wires the full stack: router, middleware, handler, use
// cases, in-memory limiter and job store, with the generator faked.
func newTestServer(t *testing.T, gen *fakeGenerator, limit int) *httptest.Server {
	t.Helper()
	return newTestServerWithFallback(t, gen, limit, true)
}

func newTestServerWithFallback(t *testing.T, gen *fakeGenerator, limit int, fallbackDefault bool) *httptest.Server {
	t.Helper()
	limiter := ratelimit.NewMemoryLimiter(limit, time.Minute)
	analyzer := usecase.NewAnalyzer(limiter, gen, nil, nil)
	jobs := usecase.NewJobManager(memstore.NewJobStore(), limiter, gen, nil, nil)
	srv := httptest.NewServer(router.New(handler.NewHandler(analyzer, jobs, "test", fallbackDefault)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleAnalyze_Success(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "acme.io"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decode[response.AnalyzeResponse](t, resp)
	assert.True(t, body.AICalled)
	assert.Equal(t, "Acme", body.CompanyName)
	assert.Equal(t, "https://acme.io", body.CompanyURL)
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleAnalyze_MissingURL(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "URL is required", body.Error)
}

func TestHandleAnalyze_BlockedURL(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	tests := []struct {
		url    string
		reason string
	}{
		{"http://localhost:8080", "loopback"},
		{"http://192.168.1.1", "private_ip"},
		{"http://169.254.1.1", "link_local"},
		{"db.internal", "internal_hostname"},
		{"ftp://example.com", "unsupported_scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "`+tt.url+`"}`)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[response.ErrorResponse](t, resp)
			assert.Equal(t, tt.reason, body.Reason)
		})
	}
}

func TestHandleAnalyze_RateLimited(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 2)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body := decode[response.ErrorResponse](t, resp)
	assert.GreaterOrEqual(t, body.RetryAfterSeconds, 1)
	assert.LessOrEqual(t, body.RetryAfterSeconds, 60)
}

func TestHandleAnalyze_UnusableOutputWithoutFallback(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: "sorry, no data"}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com", "fallback_on_error": false}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "malformed_json", body.Reason)
}

func TestHandleAnalyze_UpstreamDeclinedWithoutFallback(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: `{"error": "site unreachable"}`}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com", "fallback_on_error": false}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "upstream_declined", body.Reason)
}

func TestHandleAnalyze_UpstreamFailureWithoutFallback(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{err: errors.New("dial tcp: timeout")}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com", "fallback_on_error": false}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleAnalyze_FallbackOnUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{err: errors.New("dial tcp: timeout")}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "acme-corp.io"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[response.AnalyzeResponse](t, resp)
	assert.False(t, body.AICalled)
	assert.Equal(t, "Acme Corp", body.CompanyName)
}

func TestHandleAnalyze_ConfiguredFallbackDefaultApplies(t *testing.T) {
	srv := newTestServerWithFallback(t, &fakeGenerator{err: errors.New("dial tcp: timeout")}, 20, false)

	// No body flag: the server default (disabled) governs.
	resp := postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// An explicit body flag still overrides the default.
	resp = postJSON(t, srv.URL+"/api/v1/analyze", `{"url": "example.com", "fallback_on_error": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[response.AnalyzeResponse](t, resp)
	assert.False(t, body.AICalled)
}

func TestJobLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp := postJSON(t, srv.URL+"/api/v1/jobs", `{"url": "acme.io"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	created := decode[response.JobResponse](t, resp)
	require.NotEmpty(t, created.JobID)
	assert.Equal(t, string(entity.JobPending), created.Status)

	jobURL := srv.URL + "/api/v1/jobs/" + created.JobID
	var status response.JobStatusResponse
	require.Eventually(t, func() bool {
		getResp, err := http.Get(jobURL)
		if err != nil {
			return false
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(getResp.Body).Decode(&status); err != nil {
			return false
		}
		return status.Status == string(entity.JobCompleted)
	}, 2*time.Second, 10*time.Millisecond)

	require.NotNil(t, status.Result)
	assert.Equal(t, "Acme", status.Result.CompanyName)
	require.NotNil(t, status.AICalled)
	assert.True(t, *status.AICalled)

	// List elides results.
	listResp, err := http.Get(srv.URL + "/api/v1/jobs")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var listed []response.JobStatusResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].Result)

	// Delete, then the job is gone.
	req, err := http.NewRequest(http.MethodDelete, jobURL, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getResp, err := http.Get(jobURL)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHandleGetJob_Unknown(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp, err := http.Get(srv.URL + "/api/v1/jobs/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleDeleteJob_Unknown(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/jobs/no-such-id", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleListJobs_BadLimit(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp, err := http.Get(srv.URL + "/api/v1/jobs?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{raw: generatorOutput}, 20)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body response.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr only", nil, "203.0.113.9:4123", "203.0.113.9"},
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "10.0.0.1:80", "198.51.100.7"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "10.0.0.1:80", "198.51.100.7"},
		{"x-forwarded-for garbage skipped", map[string]string{"X-Forwarded-For": "not-an-ip, 198.51.100.7"}, "10.0.0.1:80", "198.51.100.7"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.1:80", "198.51.100.9"},
		{"forwarded-for wins over real-ip", map[string]string{"X-Forwarded-For": "198.51.100.7", "X-Real-IP": "198.51.100.9"}, "10.0.0.1:80", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, handler.ClientIP(req))
		})
	}
}
