package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/paging"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxBody = 1 << 20

// decodeJSON reads exactly one JSON object from the body. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Validation(op, "request body too large")
		}
		return apperr.Validation(op, "invalid request body: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	if dec.More() {
		return apperr.Validation(op, "invalid request body: trailing data")
	}
	return nil
}

// allowQuery rejects query parameters the route does not know.
func allowQuery(op string, q url.Values, known ...string) error {
	for k := range q {
		ok := false
		for _, want := range known {
			if k == want {
				ok = true
				break
			}
		}
		if !ok {
			return apperr.Validation(op, "unknown query parameter %q", k)
		}
	}
	return nil
}

// flexInt64 accepts 42 as well as "42".
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("userId must be a valid integer")
	}
	*f = flexInt64(n)
	return nil
}

type sizeReq struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type createProductReq struct {
	Name  string    `json:"name"`
	Price *float64  `json:"price"`
	Sizes []sizeReq `json:"sizes"`
}

type itemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	UserID flexInt64 `json:"userId"`
	Items  []itemReq `json:"items"`
}

type idResp struct {
	ID string `json:"id"`
}

type productItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type productDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type orderItem struct {
	ProductDetails productDetails `json:"productDetails"`
	Quantity       int            `json:"quantity"`
	Unavailable    bool           `json:"unavailable,omitempty"`
}

type orderData struct {
	ID         string      `json:"id"`
	Items      []orderItem `json:"items"`
	TotalPrice float64     `json:"totalPrice"`
}

type listResp[T any] struct {
	Data []T         `json:"data"`
	Page paging.Page `json:"page"`
}
