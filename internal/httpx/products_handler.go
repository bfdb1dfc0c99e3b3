package httpx

import (
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/ariefcatur/go-shop-orders.git/internal/paging"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
)

type ProductsHandler struct {
	Store inventory.Store
	Log   *zap.Logger
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const op = "httpx.createProduct"
	var req createProductReq
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	n := inventory.NewProduct{Name: req.Name, Sizes: make([]inventory.SizeStock, 0, len(req.Sizes))}
	if req.Price != nil {
		n.Price = *req.Price
	}
	for _, s := range req.Sizes {
		n.Sizes = append(n.Sizes, inventory.SizeStock{Size: inventory.Size(s.Size), Quantity: s.Quantity})
	}

	p, err := h.Store.Create(r.Context(), n)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResp{ID: p.ID})
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	const op = "httpx.listProducts"
	q := r.URL.Query()
	if err := allowQuery(op, q, "name", "size", "limit", "offset"); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	limit, offset, err := paging.Parse(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ps, total, err := h.Store.List(r.Context(), inventory.Filter{
		Name:   q.Get("name"),
		Size:   inventory.Size(q.Get("size")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	data := make([]productItem, 0, len(ps))
	for _, p := range ps {
		data = append(data, productItem{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	writeJSON(w, http.StatusOK, listResp[productItem]{Data: data, Page: paging.New(offset, limit, total)})
}
