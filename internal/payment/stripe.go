package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[*stripe.PaymentIntent] {
	return gobreaker.NewCircuitBreaker[*stripe.PaymentIntent](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Declines and bad requests say nothing about processor health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *stripe.Error
			if errors.As(err, &se) {
				return se.Type == stripe.ErrorTypeCard || se.Type == stripe.ErrorTypeInvalidRequest
			}
			return false
		},
	})
}

// StripeGateway creates payment intents through the Stripe API.
type StripeGateway struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
}

// NewStripeGateway builds a gateway for the secret key. A nil backends uses
// the default Stripe endpoints.
func NewStripeGateway(secretKey string, cfg BreakerConfig, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:     client.New(secretKey, backends),
		breaker: newBreaker("stripe-intents", cfg),
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, domain.NewValidationError("Invalid amount", "amount")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, gatewayError("create intent", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// StripeConfirmer confirms intents on behalf of the paying client.
type StripeConfirmer struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
}

func NewStripeConfirmer(key string, cfg BreakerConfig, backends *stripe.Backends) *StripeConfirmer {
	return &StripeConfirmer{
		api:     client.New(key, backends),
		breaker: newBreaker("stripe-confirm", cfg),
	}
}

func (c *StripeConfirmer) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (*Confirmation, error) {
	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, &GatewayError{Op: "confirm", Message: err.Error(), Err: err}
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	params.Context = ctx
	// publishable keys may only confirm an intent they hold the secret for
	params.AddExtra("client_secret", clientSecret)

	pi, err := c.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return c.api.PaymentIntents.Confirm(intentID, params)
	})
	if err != nil {
		return nil, gatewayError("confirm", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &GatewayError{
			Op:      "confirm",
			Message: fmt.Sprintf("payment not completed, status %s", pi.Status),
		}
	}

	return &Confirmation{
		IntentID:     pi.ID,
		Status:       string(pi.Status),
		ReceiptEmail: pi.ReceiptEmail,
	}, nil
}

func gatewayError(op string, err error) *GatewayError {
	var se *stripe.Error
	switch {
	case errors.As(err, &se):
		msg := se.Msg
		if msg == "" {
			msg = string(se.Code)
		}
		return &GatewayError{Op: op, Message: msg, Err: err}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &GatewayError{Op: op, Message: "payment processor temporarily unavailable", Err: err}
	default:
		return &GatewayError{Op: op, Message: err.Error(), Err: err}
	}
}
