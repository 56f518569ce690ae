package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrifarma/platform/internal/models"
	"github.com/agrifarma/platform/internal/mykafka"
	cartsvc "github.com/agrifarma/platform/internal/service/cart"
	ordersvc "github.com/agrifarma/platform/internal/service/order"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
	H  *CartHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
		H: &CartHandler{
			DB:       db,
			Cart:     &cartsvc.Service{DB: db},
			Orders:   &ordersvc.Service{DB: db},
			Producer: &mykafka.Producer{},
		},
	}
}

// doJSONRequest builds an echo context carrying the identity the token
// middleware would have set.
func (env *testEnv) doJSONRequest(method, path string, body interface{}, userID uint) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.Set("userID", userID)
	c.Set("role", models.RoleFarmer)
	return rec, c
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "seeds", Description: "d", Price: 10, Stock: 20}
	require.NoError(t, env.DB.Create(&product).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: product.ID, Quantity: 3}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil, 1)
	require.NoError(t, env.H.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, uint(3), resp.Items[0].Quantity)
	require.Equal(t, 30.00, resp.Total)
}

func TestAddToCart(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "seeds", Description: "d", Price: 10, Stock: 20}
	require.NoError(t, env.DB.Create(&product).Error)

	load := map[string]uint{"product_id": product.ID, "quantity": 2}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart", load, 1)
	require.NoError(t, env.H.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, uint(1), item.UserID)
	require.Equal(t, uint(2), item.Quantity)
}

func TestAddToCartOverStock(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "rare", Description: "d", Price: 10, Stock: 1}
	require.NoError(t, env.DB.Create(&product).Error)

	load := map[string]uint{"product_id": product.ID, "quantity": 2}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart", load, 1)
	err := env.H.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestRemoveItemOwnership(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "seeds", Description: "d", Price: 10, Stock: 20}
	require.NoError(t, env.DB.Create(&product).Error)
	item := models.CartItem{UserID: 1, ProductID: product.ID, Quantity: 1}
	require.NoError(t, env.DB.Create(&item).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/v1/cart/1", nil, 2)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.H.RemoveItem(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/cart/1", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.H.RemoveItem(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "seeds", Description: "d", Price: 10, Stock: 10}
	require.NoError(t, env.DB.Create(&product).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: product.ID, Quantity: 10}).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/order", nil, 1)
	require.NoError(t, env.H.PlaceOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID uint               `json:"order_id"`
		Total   float64            `json:"total"`
		Status  string             `json:"status"`
		Items   []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint(1), resp.OrderID)
	require.Equal(t, 100.00, resp.Total)
	require.Equal(t, models.OrderStatusPending, resp.Status)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 10.00, resp.Items[0].Price)

	var p models.Product
	require.NoError(t, env.DB.First(&p, product.ID).Error)
	require.Equal(t, uint(0), p.Stock)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/order", nil, 1)
	err := env.H.PlaceOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}
