package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/senira34/lolipop-wear/internal/cart"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/pricing"
)

// ShippingInfo is what the shopper enters on the checkout form.
type ShippingInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
	Country  string `json:"country,omitempty"`
}

func (s ShippingInfo) Validate() error {
	var missing []string
	if strings.TrimSpace(s.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(s.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(s.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("Please fill in all required fields", missing...)
	}
	return nil
}

// ShippingAddress maps the form onto the stored order address.
func (s ShippingInfo) ShippingAddress() *domain.ShippingAddress {
	return &domain.ShippingAddress{
		Name:    s.FullName,
		Phone:   s.Phone,
		Street:  s.Address,
		City:    s.City,
		State:   s.State,
		ZipCode: s.ZipCode,
		Country: s.Country,
	}
}

// IntentRequest carries everything the server needs to price and open a payment intent.
type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Shipping    ShippingInfo
	Items       []cart.Item
}

type IntentRequester interface {
	RequestIntent(ctx context.Context, req IntentRequest) (clientSecret string, err error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, draft *domain.Order) (*domain.Order, error)
}

// Outcome summarizes where a checkout ended up.
type Outcome struct {
	SessionID     string        `json:"sessionId"`
	State         State         `json:"state"`
	Quote         pricing.Quote `json:"quote"`
	TransactionID string        `json:"transactionId,omitempty"`
	Order         *domain.Order `json:"order,omitempty"`
	// Warning is set when payment went through but the order record could not be written.
	Warning string `json:"warning,omitempty"`
	// FailureMessage is the reason shown to the shopper when payment failed.
	FailureMessage string `json:"failureMessage,omitempty"`
}

// Session drives one shopper through checkout. It is not safe for concurrent use.
type Session struct {
	id        string
	state     State
	cart      *cart.Cart
	owner     domain.Owner
	rules     pricing.Rules
	intents   IntentRequester
	confirmer payment.Confirmer
	orders    OrderWriter
	logger    *slog.Logger
	now       func() time.Time

	shipping     ShippingInfo
	quote        pricing.Quote
	clientSecret string
	confirmation *payment.Confirmation
	order        *domain.Order
	warning      string
	failure      string
}

type Deps struct {
	Intents   IntentRequester
	Confirmer payment.Confirmer
	Orders    OrderWriter
	Rules     pricing.Rules
	Logger    *slog.Logger
}

// NewSession starts a checkout over c. A nil Deps.Logger falls back to
// slog.Default().
func NewSession(c *cart.Cart, owner domain.Owner, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:        uuid.NewString(),
		state:     StateEditing,
		cart:      c,
		owner:     owner,
		rules:     deps.Rules,
		intents:   deps.Intents,
		confirmer: deps.Confirmer,
		orders:    deps.Orders,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

func (s *Session) transition(to State) error {
	if !CanTransitionTo(s.state, to) {
		return &IllegalTransitionError{From: s.state, To: to}
	}
	s.logger.Debug("checkout transition", "session_id", s.id, "from", s.state, "to", to)
	s.state = to
	return nil
}

// Submit accepts the shipping form. It moves Editing to PaymentPending when
// every required field is present and the cart has items.
func (s *Session) Submit(info ShippingInfo) error {
	if s.state != StateEditing {
		return &IllegalTransitionError{From: s.state, To: StatePaymentPending}
	}
	if err := info.Validate(); err != nil {
		return err
	}
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}

	s.shipping = info
	s.quote = s.rules.Quote(s.cart.Lines())
	return s.transition(StatePaymentPending)
}

// RequestIntent prices the cart and asks the server for a payment intent.
func (s *Session) RequestIntent(ctx context.Context) error {
	if s.state != StatePaymentPending {
		return &IllegalTransitionError{From: s.state, To: StateConfirming}
	}

	amount := pricing.MinorUnits(s.quote.Total)
	if amount <= 0 {
		s.fail("Invalid amount")
		return domain.NewValidationError("Invalid amount", "amount")
	}

	secret, err := s.intents.RequestIntent(ctx, IntentRequest{
		AmountMinor: amount,
		Currency:    s.rules.Currency,
		Shipping:    s.shipping,
		Items:       s.cart.Items(),
	})
	if err != nil {
		s.fail(failureMessage(err))
		return err
	}

	s.clientSecret = secret
	return s.transition(StateConfirming)
}

// Confirm submits the payment method to the processor. On success the order
// record is written straight away; a failed write does not undo the payment.
func (s *Session) Confirm(ctx context.Context, paymentMethod string) (*Outcome, error) {
	if s.state != StateConfirming {
		return nil, &IllegalTransitionError{From: s.state, To: StateSucceeded}
	}

	conf, err := s.confirmer.ConfirmPayment(ctx, s.clientSecret, paymentMethod)
	if err != nil {
		s.fail(failureMessage(err))
		return s.outcome(), err
	}

	s.confirmation = conf
	if err := s.transition(StateSucceeded); err != nil {
		return nil, err
	}

	s.recordOrder(ctx)
	return s.outcome(), nil
}

// Retry returns a failed session to Editing, keeping the cart and shipping form.
func (s *Session) Retry() error {
	if err := s.transition(StateEditing); err != nil {
		return err
	}
	s.clientSecret = ""
	s.failure = ""
	return nil
}

// Run drives the whole flow from Editing to a terminal or failed state.
func (s *Session) Run(ctx context.Context, info ShippingInfo, paymentMethod string) (*Outcome, error) {
	if err := s.Submit(info); err != nil {
		return nil, err
	}
	if err := s.RequestIntent(ctx); err != nil {
		return s.outcome(), err
	}
	return s.Confirm(ctx, paymentMethod)
}

func (s *Session) recordOrder(ctx context.Context) {
	_ = s.transition(StateOrderWriteAttempted)

	now := s.now()
	draft := &domain.Order{
		User:            s.owner,
		OrderItems:      s.cart.OrderItems(),
		ShippingAddress: s.shipping.ShippingAddress(),
		PaymentMethod:   domain.PaymentMethodCard,
		PaymentResult: domain.PaymentResult{
			ID:           s.confirmation.IntentID,
			Status:       s.confirmation.Status,
			UpdateTime:   now.Format(time.RFC3339),
			EmailAddress: s.shipping.Email,
		},
		ItemsPrice:    pricing.Float(s.quote.Subtotal),
		ShippingPrice: pricing.Float(s.quote.Shipping),
		TaxPrice:      pricing.Float(s.quote.Tax),
		TotalPrice:    pricing.Float(s.quote.Total),
		IsPaid:        true,
		PaidAt:        &now,
		OrderStatus:   domain.OrderStatusProcessing,
	}

	order, err := s.orders.CreateOrder(ctx, draft)
	if err != nil {
		s.logger.ErrorContext(ctx, "order write failed after successful payment",
			"session_id", s.id, "transaction_id", s.confirmation.IntentID, "error", err)
		s.warning = fmt.Sprintf("Payment succeeded but we could not save your order. Please contact support with payment ID: %s", s.confirmation.IntentID)
		_ = s.transition(StateOrderWriteFailed)
	} else {
		s.order = order
		_ = s.transition(StateOrderWriteSucceeded)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "cart not cleared after checkout", "session_id", s.id, "error", err)
	}
}

func (s *Session) fail(message string) {
	s.failure = message
	_ = s.transition(StateFailed)
}

func (s *Session) outcome() *Outcome {
	out := &Outcome{
		SessionID:      s.id,
		State:          s.state,
		Quote:          s.quote,
		Order:          s.order,
		Warning:        s.warning,
		FailureMessage: s.failure,
	}
	if s.confirmation != nil {
		out.TransactionID = s.confirmation.IntentID
	}
	return out
}

func failureMessage(err error) string {
	var gErr *payment.GatewayError
	if errors.As(err, &gErr) {
		return gErr.Message
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}
