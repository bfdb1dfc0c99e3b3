package httpx

import (
	"encoding/json"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"go.uber.org/zap"
	"net/http"
)

type errorBody struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorBody{Detail: detail, StatusCode: code})
}

// writeError maps err to its HTTP status. Server-side causes are logged and
// never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	code := apperr.HTTPStatus(kind)
	l := logx.FromContext(r.Context(), log)
	if code >= http.StatusInternalServerError {
		l.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		l.Info("request rejected", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.String("detail", apperr.Message(err)))
	}
	writeDetail(w, code, apperr.Message(err))
}
