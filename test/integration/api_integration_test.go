package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/SHUBHAMREWA/kanvei.in/internal/auth"
	"github.com/SHUBHAMREWA/kanvei.in/internal/coupon"
	"github.com/SHUBHAMREWA/kanvei.in/internal/email"
	"github.com/SHUBHAMREWA/kanvei.in/internal/handler"
	"github.com/SHUBHAMREWA/kanvei.in/internal/media"
	"github.com/SHUBHAMREWA/kanvei.in/internal/payment"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"
	"github.com/SHUBHAMREWA/kanvei.in/internal/router"
	"github.com/SHUBHAMREWA/kanvei.in/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGatewaySecret = "test-secret"

// stubGateway fabricates gateway orders locally and verifies signatures with a
// fixed secret, so checkout flows run without the real payment provider.
type stubGateway struct {
	counter atomic.Int64
}

func (g *stubGateway) CreateOrder(amount int64, currency, receipt string) (*payment.GatewayOrder, error) {
	return &payment.GatewayOrder{
		ID:       fmt.Sprintf("order_test_%d", g.counter.Add(1)),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(testGatewaySecret, orderID, paymentID, signature)
}

func signPayment(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(testGatewaySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	stockRepo := repository.NewStockRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)

	couponValidator := coupon.NewValidator(couponRepo, logger)
	mailer := email.NewNopMailer(logger)
	imageStore := media.NewNopStore(logger)
	authorizer := auth.NewAuthorizer()

	adjuster := service.NewStockAdjuster(stockRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, couponRepo, adjuster, mailer, logger)
	paymentService := service.NewPaymentService(&stubGateway{}, productRepo, couponValidator, orderService, logger)
	productService := service.NewProductService(productRepo, categoryRepo, imageStore, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)

	return router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, authorizer, logger),
		Category: handler.NewCategoryHandler(categoryService, authorizer, logger),
		Order:    handler.NewOrderHandler(orderService, authorizer, logger),
		Payment:  handler.NewPaymentHandler(paymentService, logger),
		Coupon:   handler.NewCouponHandler(couponValidator, logger),
		Support:  handler.NewSupportHandler(mailer, logger),
	}, logger)
}

func doJSON(t *testing.T, server http.Handler, method, path string, payload interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	}
	return w, decoded
}

func adminHeaders() map[string]string {
	return map[string]string{
		"X-User-ID":   uuid.New().String(),
		"X-User-Role": "admin",
	}
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("GET /api/products returns the catalogue", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalogue(t, testDB.Pool)

		w, body := doJSON(t, server, http.MethodGet, "/api/products", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["products"], 3)
		assert.NotNil(t, body["pagination"])
	})

	t.Run("GET /api/products filters by category", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalogue(t, testDB.Pool)

		w, body := doJSON(t, server, http.MethodGet, "/api/products?category=Clothing", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["products"], 3)

		w, body = doJSON(t, server, http.MethodGet, "/api/products?category=Electronics", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["products"], 0)
	})

	t.Run("GET /api/products/{id} returns and counts a view", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		path := "/api/products/" + ids["Silk Kurta"].String()
		w, body := doJSON(t, server, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		product := body["product"].(map[string]interface{})
		assert.Equal(t, "Silk Kurta", product["name"])
		assert.Equal(t, float64(1), product["views"])

		w, body = doJSON(t, server, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		product = body["product"].(map[string]interface{})
		assert.Equal(t, float64(2), product["views"])
	})

	t.Run("GET /api/products/{slug} resolves by slug", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		w, body := doJSON(t, server, http.MethodGet, "/api/products/silk-kurta", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		product := body["product"].(map[string]interface{})
		assert.Equal(t, ids["Silk Kurta"].String(), product["id"])
		assert.Equal(t, "Silk Kurta", product["name"])

		w, _ = doJSON(t, server, http.MethodGet, "/api/products/no-such-slug", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /api/products/{id} returns 404 for unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w, _ := doJSON(t, server, http.MethodGet, "/api/products/"+uuid.New().String(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST /api/products requires an admin", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		payload := map[string]interface{}{"name": "New Kurta", "price": 799}

		w, _ := doJSON(t, server, http.MethodPost, "/api/products", payload, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w, body := doJSON(t, server, http.MethodPost, "/api/products", payload, adminHeaders())
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, body["success"])
	})

	t.Run("admin can update and delete a product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		path := "/api/products/" + ids["Silk Kurta"].String()

		w, body := doJSON(t, server, http.MethodPut, path, map[string]interface{}{"name": "Silk Kurta Deluxe", "price": 1499}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		product := body["product"].(map[string]interface{})
		assert.Equal(t, "Silk Kurta Deluxe", product["name"])

		w, _ = doJSON(t, server, http.MethodDelete, path, nil, adminHeaders())
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, server, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("category management", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w, body := doJSON(t, server, http.MethodPost, "/api/categories",
			map[string]string{"name": "Jewellery", "slug": "jewellery"}, adminHeaders())
		require.Equal(t, http.StatusCreated, w.Code)
		categoryID := body["category"].(map[string]interface{})["id"].(string)

		w, _ = doJSON(t, server, http.MethodPost, "/api/categories",
			map[string]string{"name": "Nope"}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w, body = doJSON(t, server, http.MethodGet, "/api/categories", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["categories"], 1)

		w, _ = doJSON(t, server, http.MethodPut, "/api/categories/"+categoryID,
			map[string]string{"name": "Fine Jewellery", "slug": "fine-jewellery"}, adminHeaders())
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, server, http.MethodDelete, "/api/categories/"+categoryID, nil, adminHeaders())
		assert.Equal(t, http.StatusOK, w.Code)

		w, body = doJSON(t, server, http.MethodGet, "/api/categories", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["categories"], 0)
	})

	t.Run("GET /health returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCheckoutAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("create-order re-prices the cart server-side", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		payload := map[string]interface{}{
			"cartItems": []map[string]interface{}{
				// The client-supplied price is ignored.
				{"productId": ids["Silk Kurta"].String(), "quantity": 2, "price": 1},
			},
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/payment/create-order", payload, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(259800), body["amount"]) // 2 x 1299 in paise
		assert.Equal(t, "INR", body["currency"])
		assert.NotEmpty(t, body["orderId"])
	})

	t.Run("create-order applies a percentage coupon", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)
		SeedCoupon(t, testDB.Pool, "FESTIVE10", "percentage", 10, nil)

		payload := map[string]interface{}{
			"cartItems": []map[string]interface{}{
				{"productId": ids["Silk Kurta"].String(), "quantity": 1},
			},
			"appliedCoupon": "FESTIVE10",
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/payment/create-order", payload, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, float64(116910), body["amount"]) // 1299 - 10% in paise

		breakdown := body["breakdown"].(map[string]interface{})
		assert.InDelta(t, 129.9, breakdown["discount"], 0.001)
	})

	t.Run("verify records the order and decrements stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)
		couponID := SeedCoupon(t, testDB.Pool, "FESTIVE10", "percentage", 10, nil)

		kurta := ids["Silk Kurta"]
		shirt := ids["Linen Shirt"]

		verifyReq := map[string]interface{}{
			"razorpay_order_id":   "order_test_1",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  signPayment("order_test_1", "pay_abc"),
			"orderData": map[string]interface{}{
				"items": []map[string]interface{}{
					{"productId": kurta.String(), "name": "Silk Kurta", "price": 1299, "quantity": 2},
					{"productId": shirt.String(), "name": "Linen Shirt", "price": 999, "quantity": 1,
						"selectedOption": map[string]string{"size": "M", "color": "blue"}},
				},
				"totalAmount":   3597,
				"customerEmail": "buyer@example.com",
				"couponCode":    "FESTIVE10",
			},
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/payment/verify", verifyReq, nil)
		require.Equal(t, http.StatusOK, w.Code)

		order := body["order"].(map[string]interface{})
		assert.Equal(t, "confirmed", order["status"])
		assert.Equal(t, "paid", order["paymentStatus"])
		assert.Equal(t, "razorpay", order["paymentMethod"])
		assert.Equal(t, order["id"], body["orderId"])
		assert.Equal(t, "Payment verified and order created successfully", body["message"])

		// Product-level stock for the kurta, option-level stock for the shirt.
		assert.Equal(t, 8, ProductStock(t, testDB.Pool, kurta))
		assert.Equal(t, 3, OptionStock(t, testDB.Pool, shirt, "M", "blue"))

		var usageCount int
		err := testDB.Pool.QueryRow(context.Background(),
			"SELECT usage_count FROM coupons WHERE id = $1", couponID).Scan(&usageCount)
		require.NoError(t, err)
		assert.Equal(t, 1, usageCount)
	})

	t.Run("verify replays create duplicate orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		verifyReq := map[string]interface{}{
			"razorpay_order_id":   "order_test_1",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  signPayment("order_test_1", "pay_abc"),
			"orderData": map[string]interface{}{
				"items": []map[string]interface{}{
					{"productId": ids["Silk Kurta"].String(), "name": "Silk Kurta", "price": 1299, "quantity": 1},
				},
				"totalAmount": 1299,
			},
		}

		// There is no idempotency key; each replay records a fresh order and
		// decrements stock again.
		for i := 0; i < 2; i++ {
			w, _ := doJSON(t, server, http.MethodPost, "/api/payment/verify", verifyReq, nil)
			require.Equal(t, http.StatusOK, w.Code)
		}

		var count int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 2, count)
		assert.Equal(t, 8, ProductStock(t, testDB.Pool, ids["Silk Kurta"]))
	})

	t.Run("verify rejects a forged signature", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		verifyReq := map[string]interface{}{
			"razorpay_order_id":   "order_test_1",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  "forged",
			"orderData": map[string]interface{}{
				"items":       []map[string]interface{}{{"productId": ids["Silk Kurta"].String(), "quantity": 1}},
				"totalAmount": 1299,
			},
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/payment/verify", verifyReq, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])

		// Nothing was recorded.
		var count int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 0, count)
		assert.Equal(t, 10, ProductStock(t, testDB.Pool, ids["Silk Kurta"]))
	})

	t.Run("coupon validation endpoint", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCoupon(t, testDB.Pool, "FESTIVE10", "percentage", 10, nil)

		w, body := doJSON(t, server, http.MethodPost, "/api/coupons/validate", map[string]string{"code": "FESTIVE10"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])

		w, _ = doJSON(t, server, http.MethodPost, "/api/coupons/validate", map[string]string{"code": "NOPE"}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("order lifecycle", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Asha", "asha@example.com", "customer")

		createReq := map[string]interface{}{
			"userId": userID.String(),
			"items": []map[string]interface{}{
				{"productId": ids["Cotton Saree"].String(), "name": "Cotton Saree", "price": 2499, "quantity": 1},
			},
			"totalAmount":   2499,
			"paymentMethod": "cod",
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/orders", createReq, nil)
		require.Equal(t, http.StatusOK, w.Code)

		order := body["order"].(map[string]interface{})
		orderID := order["id"].(string)
		assert.Equal(t, orderID, body["orderId"])
		assert.Equal(t, "pending", order["status"])
		assert.Equal(t, 4, ProductStock(t, testDB.Pool, ids["Cotton Saree"]))

		// The owner can read the order back, with joined user and product data.
		w, body = doJSON(t, server, http.MethodGet, "/api/orders/"+orderID, nil,
			map[string]string{"X-User-ID": userID.String()})
		require.Equal(t, http.StatusOK, w.Code)
		got := body["order"].(map[string]interface{})
		assert.Equal(t, orderID, got["id"])
		assert.Equal(t, "Asha", got["user"].(map[string]interface{})["name"])

		// A stranger cannot.
		w, _ = doJSON(t, server, http.MethodGet, "/api/orders/"+orderID, nil,
			map[string]string{"X-User-ID": uuid.New().String()})
		assert.Equal(t, http.StatusForbidden, w.Code)

		// Walk the order forward, then check a backward move is refused.
		for _, status := range []string{"processing", "shipping", "delivered"} {
			w, _ = doJSON(t, server, http.MethodPut, "/api/orders/"+orderID,
				map[string]string{"status": status}, nil)
			require.Equal(t, http.StatusOK, w.Code, "transition to %s", status)
		}

		w, body = doJSON(t, server, http.MethodPut, "/api/orders/"+orderID,
			map[string]string{"status": "pending"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, body["error"], "Cannot change status")
	})

	t.Run("insufficient stock fails the whole order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)

		createReq := map[string]interface{}{
			"items": []map[string]interface{}{
				{"productId": ids["Silk Kurta"].String(), "name": "Silk Kurta", "price": 1299, "quantity": 1},
				{"productId": ids["Cotton Saree"].String(), "name": "Cotton Saree", "price": 2499, "quantity": 50},
			},
			"totalAmount": 126249,
		}

		w, body := doJSON(t, server, http.MethodPost, "/api/orders", createReq, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, body["error"], "Insufficient stock")

		// The kurta decrement was rolled back with the rest.
		assert.Equal(t, 10, ProductStock(t, testDB.Pool, ids["Silk Kurta"]))
		assert.Equal(t, 5, ProductStock(t, testDB.Pool, ids["Cotton Saree"]))

		var count int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("list filters by user and status", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedCatalogue(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Asha", "asha@example.com", "customer")
		otherID := SeedUser(t, testDB.Pool, "Ravi", "ravi@example.com", "customer")

		for _, uid := range []uuid.UUID{userID, otherID} {
			createReq := map[string]interface{}{
				"userId": uid.String(),
				"items": []map[string]interface{}{
					{"productId": ids["Silk Kurta"].String(), "name": "Silk Kurta", "price": 1299, "quantity": 1},
				},
				"totalAmount": 1299,
			}
			w, _ := doJSON(t, server, http.MethodPost, "/api/orders", createReq, nil)
			require.Equal(t, http.StatusOK, w.Code)
		}

		w, body := doJSON(t, server, http.MethodGet, "/api/orders?userId="+userID.String(), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["orders"], 1)

		w, body = doJSON(t, server, http.MethodGet, "/api/orders?userId="+userID.String()+"&status=delivered", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["orders"], 0)
	})
}

func TestSupportAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	w, body := doJSON(t, server, http.MethodPost, "/api/support", map[string]string{
		"name":    "Asha",
		"email":   "asha@example.com",
		"subject": "Order query",
		"message": "Where is my order?",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestCORS_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
}
