package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/auth"
	"github.com/SHUBHAMREWA/kanvei.in/internal/config"
	"github.com/SHUBHAMREWA/kanvei.in/internal/coupon"
	"github.com/SHUBHAMREWA/kanvei.in/internal/database"
	"github.com/SHUBHAMREWA/kanvei.in/internal/email"
	"github.com/SHUBHAMREWA/kanvei.in/internal/handler"
	"github.com/SHUBHAMREWA/kanvei.in/internal/media"
	"github.com/SHUBHAMREWA/kanvei.in/internal/payment"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"
	"github.com/SHUBHAMREWA/kanvei.in/internal/router"
	"github.com/SHUBHAMREWA/kanvei.in/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kanvei API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)

	// Initialize the payment gateway and coupon validator
	gateway := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger)
	couponValidator := coupon.NewValidator(couponRepo, logger)

	// Outbound email is optional; without credentials sends are logged and dropped.
	var mailer email.Mailer
	if cfg.Email.Enabled {
		mailer = email.NewPostmarkMailer(cfg.Email, logger)
	} else {
		mailer = email.NewNopMailer(logger)
		logger.Info().Msg("outbound email disabled")
	}

	// Image cleanup is optional in the same way.
	var imageStore media.ImageStore
	if cfg.Cloudinary.Enabled {
		imageStore, err = media.NewCloudinaryStore(cfg.Cloudinary, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize image store: %w", err)
		}
	} else {
		imageStore = media.NewNopStore(logger)
		logger.Info().Msg("image cleanup disabled")
	}

	authorizer := auth.NewAuthorizer()

	// Initialize services
	adjuster := service.NewStockAdjuster(stockRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, couponRepo, adjuster, mailer, logger)
	paymentService := service.NewPaymentService(gateway, productRepo, couponValidator, orderService, logger)
	productService := service.NewProductService(productRepo, categoryRepo, imageStore, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, authorizer, logger),
		Category: handler.NewCategoryHandler(categoryService, authorizer, logger),
		Order:    handler.NewOrderHandler(orderService, authorizer, logger),
		Payment:  handler.NewPaymentHandler(paymentService, logger),
		Coupon:   handler.NewCouponHandler(couponValidator, logger),
		Support:  handler.NewSupportHandler(mailer, logger),
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
