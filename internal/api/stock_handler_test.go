package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/middleware"
	"stocktrail-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubStockService records the last call and replies with canned values.
type stubStockService struct {
	entry   *models.StockHistoryEntry
	history []*models.StockHistoryEntry
	err     error

	gotProductID string
	gotNewStock  int64
	gotCartons   int64
	gotReason    string
}

func (s *stubStockService) UpdateStock(_ context.Context, _ *models.User, productID string, newStock, newCartons int64, reason string) (*models.StockHistoryEntry, error) {
	s.gotProductID = productID
	s.gotNewStock = newStock
	s.gotCartons = newCartons
	s.gotReason = reason
	return s.entry, s.err
}

func (s *stubStockService) HistoryByProduct(_ context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	s.gotProductID = productID
	return s.history, s.err
}

func (s *stubStockService) WatchHistory(context.Context, string, func([]*models.StockHistoryEntry)) (*db.Subscription, error) {
	return nil, fmt.Errorf("not supported")
}

func newStockRouter(svc core.StockService, user *models.User) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CtxCurrentUser, user)
		}
	})
	h := NewStockHandler(svc)
	router.PUT("/products/:productId/stock", h.UpdateStock)
	router.GET("/products/:productId/history", h.History)
	return router
}

func TestUpdateStockHandlerReturnsEntry(t *testing.T) {
	stub := &stubStockService{entry: &models.StockHistoryEntry{
		ProductID: "p1", PreviousStock: 50, NewStock: 40, ChangeAmount: -10,
	}}
	router := newStockRouter(stub, &models.User{ID: "admin-1", Role: models.RoleAdmin})

	body := `{"newStock": 40, "newCartons": 4, "changeReason": "sold goods"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/p1/stock", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", stub.gotProductID)
	assert.Equal(t, int64(40), stub.gotNewStock)
	assert.Equal(t, int64(4), stub.gotCartons)
	assert.Equal(t, "sold goods", stub.gotReason)

	var entry models.StockHistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, int64(-10), entry.ChangeAmount)
}

func TestUpdateStockHandlerRejectsMissingFields(t *testing.T) {
	router := newStockRouter(&stubStockService{}, &models.User{ID: "admin-1", Role: models.RoleAdmin})

	// newCartons absent: binding must fail before the service is reached.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/p1/stock", strings.NewReader(`{"newStock": 40}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStockHandlerWithoutIdentity(t *testing.T) {
	router := newStockRouter(&stubStockService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/p1/stock", strings.NewReader(`{"newStock": 1, "newCartons": 1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateStockHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", fmt.Errorf("update stock: %w", core.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("update stock: %w", core.ErrProductNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("transaction failed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newStockRouter(&stubStockService{err: tc.err},
				&models.User{ID: "u1", Role: models.RoleUser})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/products/p1/stock", strings.NewReader(`{"newStock": 1, "newCartons": 1}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestHistoryHandlerReturnsEmptyArrayNotNull(t *testing.T) {
	router := newStockRouter(&stubStockService{}, &models.User{ID: "u1", Role: models.RoleUser})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/p1/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
