package httpx

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const genericDetail = "An unexpected error occurred. Please try again later."

func NewRouter(log *zap.Logger, reqTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID(log), accessLog(log), recoverer(log))
	r.Use(cors, middleware.Compress(5, "application/json"))
	r.Use(timeout(reqTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the E-commerce API."})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Instrument wraps h with an otelhttp server span per request.
func Instrument(h http.Handler, service string) http.Handler {
	return otelhttp.NewHandler(h, service)
}
