package httpx

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/paging"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrdersHandler struct {
	Placer *orders.Placer
	Query  *orders.Query
	Idem   *redisx.Idempotency // nil = Idempotency-Key diabaikan
	Log    *zap.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{userId}", h.listOrders)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	const op = "httpx.createOrder"
	var req createOrderReq
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx := r.Context()
	key := r.Header.Get(headerIdempotencyKey)
	if key != "" && h.Idem != nil {
		id, err := h.Idem.Begin(ctx, key)
		switch {
		case errors.Is(err, redisx.ErrInFlight):
			writeError(w, r, h.Log, apperr.Conflict(op, "%s", err.Error()))
			return
		case err != nil:
			// Redis cuma fast-path; lanjut tanpa idempotency
			logx.FromContext(ctx, h.Log).Warn("idempotency unavailable", zap.Error(err))
			key = ""
		case id != "":
			w.Header().Set("Idempotent-Replayed", "true")
			writeJSON(w, http.StatusCreated, idResp{ID: id})
			return
		}
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemInput{ProductID: it.ProductID, Qty: it.Quantity})
	}
	o, err := h.Placer.PlaceOrder(ctx, int64(req.UserID), items)

	if key != "" && h.Idem != nil {
		bg := context.WithoutCancel(ctx)
		if err != nil {
			h.logIdem(r, h.Idem.Abort(bg, key))
		} else {
			h.logIdem(r, h.Idem.Complete(bg, key, o.ID))
		}
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResp{ID: o.ID})
}

func (h *OrdersHandler) logIdem(r *http.Request, err error) {
	if err != nil {
		logx.FromContext(r.Context(), h.Log).Warn("idempotency key update failed", zap.Error(err))
	}
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	const op = "httpx.listOrders"
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, r, h.Log, apperr.Validation(op, "userId must be a positive integer"))
		return
	}
	q := r.URL.Query()
	if err := allowQuery(op, q, "limit", "offset"); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	limit, offset, err := paging.Parse(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	views, total, err := h.Query.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	data := make([]orderData, 0, len(views))
	for _, v := range views {
		d := orderData{ID: v.ID, TotalPrice: v.TotalPrice, Items: make([]orderItem, 0, len(v.Items))}
		for _, it := range v.Items {
			d.Items = append(d.Items, orderItem{
				ProductDetails: productDetails{ID: it.ProductID, Name: it.ProductName},
				Quantity:       it.Qty,
				Unavailable:    it.Unavailable,
			})
		}
		data = append(data, d)
	}
	writeJSON(w, http.StatusOK, listResp[orderData]{Data: data, Page: paging.New(offset, limit, total)})
}
