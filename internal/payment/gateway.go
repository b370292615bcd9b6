package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog"
)

// GatewayOrder is the remote payment-provider order created before the
// customer completes payment.
type GatewayOrder struct {
	ID       string
	Amount   int64 // minor currency units (paise for INR)
	Currency string
}

// Gateway abstracts the payment provider.
type Gateway interface {
	// CreateOrder creates a remote gateway order for the given amount in
	// minor currency units.
	CreateOrder(amount int64, currency, receipt string) (*GatewayOrder, error)

	// VerifySignature reports whether the callback signature matches
	// HMAC-SHA256(secret, orderID + "|" + paymentID). Comparison is exact
	// and case-sensitive.
	VerifySignature(orderID, paymentID, signature string) bool
}

// razorpayGateway implements Gateway using the Razorpay SDK.
type razorpayGateway struct {
	client    *razorpay.Client
	keySecret string
	logger    zerolog.Logger
}

// NewRazorpayGateway creates a Razorpay-backed payment gateway.
func NewRazorpayGateway(keyID, keySecret string, logger zerolog.Logger) Gateway {
	return &razorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
		logger:    logger.With().Str("component", "razorpay").Logger(),
	}
}

// CreateOrder creates a remote gateway order.
func (g *razorpayGateway) CreateOrder(amount int64, currency, receipt string) (*GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.logger.Error().Err(err).Int64("amount", amount).Str("currency", currency).Msg("failed to create gateway order")
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	id, ok := order["id"].(string)
	if !ok {
		return nil, fmt.Errorf("gateway order response missing id")
	}

	// Razorpay returns amounts as JSON numbers.
	respAmount := amount
	if a, ok := order["amount"].(float64); ok {
		respAmount = int64(a)
	}
	respCurrency := currency
	if c, ok := order["currency"].(string); ok {
		respCurrency = c
	}

	g.logger.Info().
		Str("gateway_order_id", id).
		Int64("amount", respAmount).
		Str("currency", respCurrency).
		Msg("gateway order created")

	return &GatewayOrder{
		ID:       id,
		Amount:   respAmount,
		Currency: respCurrency,
	}, nil
}

// VerifySignature recomputes the callback HMAC and compares it to the
// supplied signature.
func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}

// VerifySignature reports whether signature equals the hex-encoded
// HMAC-SHA256 of orderID + "|" + paymentID under the given secret.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return expected == signature
}
