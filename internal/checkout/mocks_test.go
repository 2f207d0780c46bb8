package checkout

import (
	"context"
	"sync"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
)

// MockIntents implements IntentRequester for testing
type MockIntents struct {
	mu       sync.Mutex
	Secret   string
	Err      error
	Requests []IntentRequest
}

func (m *MockIntents) RequestIntent(_ context.Context, req IntentRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Secret, nil
}

// MockConfirmer implements payment.Confirmer for testing
type MockConfirmer struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

func (m *MockConfirmer) ConfirmPayment(_ context.Context, clientSecret, _ string) (*payment.Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	id, err := payment.IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	return &payment.Confirmation{IntentID: id, Status: "succeeded"}, nil
}

// MockOrderWriter implements OrderWriter for testing
type MockOrderWriter struct {
	mu      sync.Mutex
	Err     error
	Written []*domain.Order
}

func (m *MockOrderWriter) CreateOrder(_ context.Context, draft *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	cp := *draft
	cp.ID = "order-1"
	m.Written = append(m.Written, &cp)
	return &cp, nil
}
