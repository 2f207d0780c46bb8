package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/senira34/lolipop-wear/internal/checkout"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	_ checkout.IntentRequester = (*Client)(nil)
	_ checkout.OrderWriter     = (*Client)(nil)
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAlreadyExists:
		return e.Code == "already_exists"
	}
	return false
}

// Client talks to the storefront REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type envelope[T any] struct {
	Success      bool     `json:"success"`
	Count        int      `json:"count"`
	Data         T        `json:"data"`
	Message      string   `json:"message"`
	Code         string   `json:"code"`
	Fields       []string `json:"fields"`
	Error        string   `json:"error"`
	ClientSecret string   `json:"clientSecret"`
}

func (c *Client) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var env envelope[[]*domain.Product]
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	var env envelope[[]*domain.Product]
	if err := c.do(ctx, http.MethodGet, "/api/products/category/"+url.PathEscape(category), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Filters(ctx context.Context, category string) (*domain.Facets, error) {
	var env envelope[*domain.Facets]
	if err := c.do(ctx, http.MethodGet, "/api/products/filters/"+url.PathEscape(category), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var env envelope[*domain.Product]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var env envelope[*domain.Product]
	if err := c.do(ctx, http.MethodPost, "/api/products", product, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// RequestIntent asks the server to open a payment intent for the cart.
func (c *Client) RequestIntent(ctx context.Context, req checkout.IntentRequest) (string, error) {
	body := map[string]any{
		"amount":       req.AmountMinor,
		"currency":     req.Currency,
		"shippingInfo": req.Shipping,
		"cartItems":    req.Items,
	}
	var env envelope[json.RawMessage]
	if err := c.do(ctx, http.MethodPost, "/api/orders/create-payment-intent", body, &env); err != nil {
		return "", err
	}
	if env.ClientSecret == "" {
		return "", &payment.GatewayError{Op: "create intent", Message: "server returned no client secret"}
	}
	return env.ClientSecret, nil
}

func (c *Client) CreateOrder(ctx context.Context, draft *domain.Order) (*domain.Order, error) {
	var env envelope[*domain.Order]
	if err := c.do(ctx, http.MethodPost, "/api/orders", draft, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var env envelope[*domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	var env envelope[[]*domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/orders/user/"+url.PathEscape(userID), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError rebuilds the typed error the server mapped to the status code.
func decodeError(resp *http.Response) error {
	var env envelope[json.RawMessage]
	_ = json.NewDecoder(resp.Body).Decode(&env)

	message := env.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest && len(env.Fields) > 0:
		return domain.NewValidationError(message, env.Fields...)
	case resp.StatusCode == http.StatusBadGateway:
		return &payment.GatewayError{Op: "server", Message: message}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: message, Detail: env.Error}
}
