package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Intent is a processor-side payment intent handed to the client for confirmation.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

// Confirmation is the processor's view of a confirmed intent.
type Confirmation struct {
	IntentID     string
	Status       string
	ReceiptEmail string
}

// Gateway creates payment intents on the server side.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
}

// Confirmer completes an intent on the client side using its client secret.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (*Confirmation, error)
}

// GatewayError is a failure reported by, or on the way to, the payment processor.
type GatewayError struct {
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment %s failed: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

var ErrMalformedClientSecret = errors.New("malformed client secret")

// IntentIDFromClientSecret extracts the intent id from a secret of the form
// "<intent id>_secret_<suffix>".
func IntentIDFromClientSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", ErrMalformedClientSecret
	}
	return id, nil
}
