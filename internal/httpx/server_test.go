package httpx

import (
	"compress/gzip"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRootAndHealth(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)

	rec := do(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome to the E-commerce API")

	rec = do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRoutesAnswerJSON(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)

	rec := do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found","status_code":404}`, rec.Body.String())

	rec = do(t, r, http.MethodDelete, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed","status_code":405}`, rec.Body.String())
}

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)

	rec := do(t, r, http.MethodGet, "/healthz", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, r, http.MethodGet, "/healthz", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestPanicBecomesGeneric500(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"An unexpected error occurred. Please try again later.","status_code":500}`, rec.Body.String())
}

func TestTimeoutAnswersJSON(t *testing.T) {
	r := NewRouter(zap.NewNop(), 20*time.Millisecond)
	r.Get("/slow", func(_ http.ResponseWriter, r *http.Request) { <-r.Context().Done() })
	r.Get("/late", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		writeDetail(w, http.StatusServiceUnavailable, "gave up")
	})

	rec := do(t, r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"detail":"Request timed out","status_code":504}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/late", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"detail":"gave up","status_code":503}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)
	rec := do(t, r, http.MethodOptions, "/orders", "",
		"Origin", "https://shop.example", "Access-Control-Request-Method", "POST")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestJSONResponsesAreGzipped(t *testing.T) {
	r := NewRouter(zap.NewNop(), 5*time.Second)
	rec := do(t, r, http.MethodGet, "/", "", "Accept-Encoding", "gzip")
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Welcome")
}

func TestInstrumentPassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rec := do(t, Instrument(r, "shop-api"), http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
