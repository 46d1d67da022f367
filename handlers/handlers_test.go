package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/handlers"
	"github.com/mmdatafocus/shop_backend/middlewares"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/sessions"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDBSeq atomic.Int64

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("API_SECRET", "handlers-secret")

	conn, err := config.OpenSQLite(fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", testDBSeq.Add(1)))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	config.SetDB(conn)
	config.SetRedisDB(nil)
	require.NoError(t, models.MigrateTable())
	t.Cleanup(func() {
		_ = sqlDB.Close()
		config.SetDB(nil)
	})

	token, err := utils.JwtGenerate("admin", []string{middlewares.StoreAdministrators})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers.RegisterRoutes(r, sessions.NewMemoryStore(time.Hour))
	return &testServer{t: t, router: r, token: token}
}

func (s *testServer) do(method string, path string, body any, admin bool) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookieName {
			s.cookie = c
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
}

type idBody struct {
	ID int `json:"id"`
}

func (s *testServer) createProduct(code string, price string) int {
	s.t.Helper()
	w := s.do(http.MethodPost, "/products", map[string]any{
		"name": "Product " + code, "code": code, "price": price, "unit": "piece",
	}, true)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[idBody](s.t, w).ID
}

func (s *testServer) createOrder() int {
	s.t.Helper()
	w := s.do(http.MethodPost, "/orders", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"address": "12 Analytical St", "postal_code": "10115", "city": "London", "country": "UK",
	}, true)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[idBody](s.t, w).ID
}

func TestAdminRoutesRequireStoreAdministrator(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/products", nil, false).Code)

	token, err := utils.JwtGenerate("customer", []string{"customers"})
	require.NoError(t, err)
	s.token = token
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/products", nil, true).Code)
}

func TestStockEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct("TEA-01", "4.50")

	type stockBody struct {
		StockSize decimal.Decimal `json:"stock_size"`
		Unit      string          `json:"unit"`
	}

	w := s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock/add", id), map[string]any{"stock_size": "5"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[stockBody](t, w)
	assert.True(t, body.StockSize.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "piece", body.Unit)

	w = s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock/reduce", id), map[string]any{"stock_size": 8}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not enough products in stock. Available stock: 5.00 piece(s).", decode[errorBody](t, w).Error)

	w = s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock/reduce", id), map[string]any{"stock_size": "2.5"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d/stock", id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[stockBody](t, w).StockSize.Equal(decimal.RequireFromString("2.5")))

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d/stock/history", id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]stockBody](t, w), 3)

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d", id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	product := decode[struct {
		AvailableStock decimal.Decimal `json:"available_stock"`
	}](t, w)
	assert.True(t, product.AvailableStock.Equal(decimal.RequireFromString("2.5")))
}

func TestStockEndpointErrors(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct("TEA-01", "4.50")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/999/stock", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/abc/stock", nil, true).Code)

	w := s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock", id), map[string]any{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad request data", decode[errorBody](t, w).Error)

	w = s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock", id), map[string]any{"stock_size": "-1"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, size := range []any{"12abc", "2,5", "5-", "1.005", 1.005, "1e11"} {
		w = s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock", id), map[string]any{"stock_size": size}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, "stock_size %v", size)
	}

	w = s.do(http.MethodPost, fmt.Sprintf("/products/%d/stock", id), map[string]any{"stock_size": "1e3"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[struct {
		StockSize decimal.Decimal `json:"stock_size"`
	}](t, w)
	assert.True(t, body.StockSize.Equal(decimal.NewFromInt(1000)), body.StockSize.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d/stock/history", id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idBody](t, w), 2)
}

func TestOrderStatusEndpoints(t *testing.T) {
	s := newTestServer(t)
	orderId := s.createOrder()
	statusesPath := fmt.Sprintf("/orders/%d/statuses", orderId)

	w := s.do(http.MethodPost, statusesPath, map[string]any{"status": "A", "comment": "accepted by shop"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Accepted", decode[struct {
		StatusName string `json:"status_name"`
	}](t, w).StatusName)

	w = s.do(http.MethodPost, statusesPath, map[string]any{"status": "A"}, true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Order already has status Accepted", decode[errorBody](t, w).Error)

	w = s.do(http.MethodPost, statusesPath, map[string]any{"status": "Q"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/orders/999/statuses", map[string]any{"status": "A"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Order does not exist", decode[errorBody](t, w).Error)

	w = s.do(http.MethodPost, statusesPath, map[string]any{"status": "X"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, statusesPath, map[string]any{"status": "S"}, true)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, statusesPath+"/recent", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "X", decode[struct {
		Status string `json:"status"`
	}](t, w).Status)

	w = s.do(http.MethodGet, statusesPath, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idBody](t, w), 3)
}

func TestOrderTotalCost(t *testing.T) {
	s := newTestServer(t)
	productId := s.createProduct("MUG-01", "2.50")
	orderId := s.createOrder()

	type orderBody struct {
		TotalCost     decimal.Decimal `json:"total_cost"`
		NumberOfItems int             `json:"number_of_items"`
	}

	w := s.do(http.MethodGet, fmt.Sprintf("/orders/%d", orderId), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[orderBody](t, w).TotalCost.IsZero())

	w = s.do(http.MethodPost, fmt.Sprintf("/orders/%d/items", orderId), map[string]any{"product_id": productId, "quantity": 3}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", orderId), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[orderBody](t, w)
	assert.True(t, body.TotalCost.Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, 1, body.NumberOfItems)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	teaId := s.createProduct("TEA-01", "2.50")
	mugId := s.createProduct("MUG-01", "1.10")

	type cartBody struct {
		Length     int             `json:"length"`
		TotalPrice decimal.Decimal `json:"total_price"`
	}

	w := s.do(http.MethodPost, "/cart/items", map[string]any{"product_id": teaId, "quantity": 2}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, s.cookie)

	w = s.do(http.MethodPost, "/cart/items", map[string]any{"product_id": mugId, "quantity": 3}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/cart", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[cartBody](t, w)
	assert.Equal(t, 5, body.Length)
	assert.True(t, body.TotalPrice.Equal(decimal.RequireFromString("8.30")), body.TotalPrice.String())

	w = s.do(http.MethodPost, fmt.Sprintf("/cart/items/%d/subtract", mugId), map[string]any{"quantity": 1}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[cartBody](t, w).Length)

	w = s.do(http.MethodPost, "/cart/items", map[string]any{"product_id": 999}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/cart/checkout", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"address": "12 Analytical St", "postal_code": "10115", "city": "London", "country": "UK",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[struct {
		TotalCost     decimal.Decimal `json:"total_cost"`
		NumberOfItems int             `json:"number_of_items"`
	}](t, w)
	assert.Equal(t, 2, order.NumberOfItems)
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("7.20")), order.TotalCost.String())

	w = s.do(http.MethodGet, "/cart", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[cartBody](t, w).Length)

	w = s.do(http.MethodPost, "/cart/checkout", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"address": "12 Analytical St", "postal_code": "10115", "city": "London", "country": "UK",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailableStockMatchesCurrentStock(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct("TEA-01", "4.50")

	var initial models.ProductStock
	require.NoError(t, config.GetDB().Where("product_id = ?", id).First(&initial).Error)
	require.NoError(t, config.GetDB().Create(&models.ProductStock{
		ProductId:       id,
		StockSize:       decimal.NewFromInt(7),
		UpdateTimestamp: initial.UpdateTimestamp.Add(time.Hour),
	}).Error)
	// later id but earlier timestamp: not current
	require.NoError(t, config.GetDB().Create(&models.ProductStock{
		ProductId:       id,
		StockSize:       decimal.NewFromInt(3),
		UpdateTimestamp: initial.UpdateTimestamp.Add(time.Minute),
	}).Error)

	w := s.do(http.MethodGet, fmt.Sprintf("/products/%d/stock", id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[struct {
		StockSize decimal.Decimal `json:"stock_size"`
	}](t, w)

	w = s.do(http.MethodGet, "/products", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]struct {
		AvailableStock decimal.Decimal `json:"available_stock"`
	}](t, w)
	require.Len(t, listed, 1)

	assert.True(t, current.StockSize.Equal(decimal.NewFromInt(7)), current.StockSize.String())
	assert.True(t, listed[0].AvailableStock.Equal(current.StockSize), listed[0].AvailableStock.String())
}

func TestRecentStatusMatchesOnTimestampTie(t *testing.T) {
	s := newTestServer(t)
	orderId := s.createOrder()
	statusesPath := fmt.Sprintf("/orders/%d/statuses", orderId)

	at := time.Now().UTC().Add(time.Hour).Truncate(time.Second).Format(time.RFC3339)
	for _, code := range []string{"A", "S"} {
		w := s.do(http.MethodPost, statusesPath, map[string]any{"status": code, "create_timestamp": at}, true)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, statusesPath+"/recent", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[struct {
		Status string `json:"status"`
	}](t, w)
	assert.Equal(t, "S", recent.Status)

	w = s.do(http.MethodGet, "/orders", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
	}](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, recent.Status, listed[0].Status.Status)
}

func TestGetOrderLogsMissingStatus(t *testing.T) {
	s := newTestServer(t)
	orderId := s.createOrder()
	require.NoError(t, config.GetDB().Where("order_id = ?", orderId).Delete(&models.OrderStatus{}).Error)

	var buf bytes.Buffer
	logger := config.GetLogger()
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	w := s.do(http.MethodGet, fmt.Sprintf("/orders/%d", orderId), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":null`)
	assert.Contains(t, buf.String(), "GetRecentOrderStatus")
}
