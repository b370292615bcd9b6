package router

import (
	"net/http"

	"github.com/SHUBHAMREWA/kanvei.in/internal/handler"
	"github.com/SHUBHAMREWA/kanvei.in/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers bundles the route handlers the router wires up.
type Handlers struct {
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
	Coupon   *handler.CouponHandler
	Support  *handler.SupportHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Catalogue
	api.HandleFunc("/products", h.Product.List).Methods(http.MethodGet)
	api.HandleFunc("/products", h.Product.Create).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.Product.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.Product.Update).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.Product.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/categories", h.Category.List).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.Category.Create).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", h.Category.Update).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", h.Category.Delete).Methods(http.MethodDelete)

	// Orders
	api.HandleFunc("/orders", h.Order.List).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.Order.Create).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.Order.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.Order.UpdateStatus).Methods(http.MethodPut)

	// Checkout
	api.HandleFunc("/payment/create-order", h.Payment.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/payment/verify", h.Payment.Verify).Methods(http.MethodPost)
	api.HandleFunc("/coupons/validate", h.Coupon.Validate).Methods(http.MethodPost)

	// Support
	api.HandleFunc("/support", h.Support.Create).Methods(http.MethodPost)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Principal
	var root http.Handler = r
	root = middleware.Principal(logger)(root)
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
