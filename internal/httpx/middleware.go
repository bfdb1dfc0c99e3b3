package httpx

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"net/http"
	"runtime/debug"
	"time"
)

const headerRequestID = "X-Request-ID"

// requestID takes X-Request-ID from the client or generates one, echoes it on
// the response and puts a request-scoped logger in the context.
func requestID(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)

			ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
			ctx = logx.WithRequestID(ctx, id)
			ctx = logx.WithLogger(ctx, log.With(zap.String("request_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logx.FromContext(r.Context(), log).Info("http request",
					zap.String("method", r.Method),
					zap.String("url", r.URL.String()),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// recoverer turns a panic into the generic 500 body.
func recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logx.FromContext(r.Context(), log).Error("panic recovered",
					zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
				writeDetail(w, http.StatusInternalServerError, genericDetail)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// cors allows any origin, the API has no credentials to protect.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", headerRequestID)
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key, "+headerRequestID)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timeout bounds the request context. When the deadline passes before the
// handler wrote anything, the client gets a JSON 504.
func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				cancel()
				if errors.Is(ctx.Err(), context.DeadlineExceeded) && ww.Status() == 0 {
					writeDetail(ww, http.StatusGatewayTimeout, "Request timed out")
				}
			}()
			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
