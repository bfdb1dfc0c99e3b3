package apperr

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	err := fmt.Errorf("place order: %w", InsufficientStock("inventory.Reserve", "insufficient stock for product %s", "p1"))

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, Is(err, KindInsufficientStock))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "insufficient stock for product p1", Message(err))
}

func TestUnclassifiedErrorsArePersistence(t *testing.T) {
	err := errors.New("connection reset by peer")

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindOf(err)))
	assert.NotContains(t, Message(err), "connection reset")
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Persistence("orders.Insert", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "orders.Insert")
	assert.Equal(t, "An unexpected error occurred. Please try again later.", Message(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindConflict:          http.StatusBadRequest,
		KindInsufficientStock: http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindPersistence:       http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), string(k))
	}
}
