package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodCOD        PaymentMethod = "COD"
	PaymentMethodCard       PaymentMethod = "Card"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodNetBanking PaymentMethod = "NetBanking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking:
		return true
	}
	return false
}

// OrderItem is a frozen snapshot of a cart line at purchase time.
type OrderItem struct {
	ProductID *int64  `json:"product,omitempty" bson:"product,omitempty"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
	Size      string  `json:"size,omitempty" bson:"size,omitempty"`
	Color     string  `json:"color,omitempty" bson:"color,omitempty"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
}

type ShippingAddress struct {
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zip_code"`
	Country string `json:"country" bson:"country"`
}

// MissingFields names the blank required address fields. An address with
// all three blank reports nothing; callers treat it as absent.
func (a *ShippingAddress) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "shippingAddress.name")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "shippingAddress.phone")
	}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "shippingAddress.street")
	}
	if len(missing) == 3 {
		return nil
	}
	return missing
}

// IsBlank reports whether the address carries none of its required fields.
func (a *ShippingAddress) IsBlank() bool {
	return a == nil ||
		strings.TrimSpace(a.Name) == "" && strings.TrimSpace(a.Phone) == "" && strings.TrimSpace(a.Street) == ""
}

type PaymentResult struct {
	ID           string `json:"id,omitempty" bson:"id,omitempty"`
	Status       string `json:"status,omitempty" bson:"status,omitempty"`
	UpdateTime   string `json:"updateTime,omitempty" bson:"update_time,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty" bson:"email_address,omitempty"`
}

type Order struct {
	ID              string           `json:"_id" bson:"_id,omitempty"`
	User            Owner            `json:"user" bson:"user"`
	OrderItems      []OrderItem      `json:"orderItems" bson:"order_items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress" bson:"shipping_address"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod" bson:"payment_method"`
	PaymentResult   PaymentResult    `json:"paymentResult" bson:"payment_result"`
	ItemsPrice      float64          `json:"itemsPrice" bson:"items_price"`
	ShippingPrice   float64          `json:"shippingPrice" bson:"shipping_price"`
	TaxPrice        float64          `json:"taxPrice" bson:"tax_price"`
	TotalPrice      float64          `json:"totalPrice" bson:"total_price"`
	IsPaid          bool             `json:"isPaid" bson:"is_paid"`
	PaidAt          *time.Time       `json:"paidAt" bson:"paid_at"`
	IsDelivered     bool             `json:"isDelivered" bson:"is_delivered"`
	DeliveredAt     *time.Time       `json:"deliveredAt" bson:"delivered_at"`
	OrderStatus     OrderStatus      `json:"orderStatus" bson:"order_status"`
	CreatedAt       time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updated_at"`
}

// ApplyStatus sets the status; Delivered also stamps the delivery fields.
// An empty status leaves the current one in place.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	if status != "" {
		o.OrderStatus = status
	}
	if status == OrderStatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
}

// ApplyPayment marks the order paid with the processor's result.
func (o *Order) ApplyPayment(result PaymentResult, now time.Time) {
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = result
	o.UpdatedAt = now
}
