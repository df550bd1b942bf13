package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusRank orders statuses along the normal fulfilment path. Used only to
// detect backward moves; the transition manager does not forbid them because
// admins use backward moves for manual corrections.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusDispatched: 2,
	StatusDelivered:  3,
	StatusCancelled:  4,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsBackwardFrom reports whether moving from current to s walks back along the
// normal lifecycle. Cancellation is never considered a backward move.
func (s Status) IsBackwardFrom(current Status) bool {
	if s == StatusCancelled || current == StatusCancelled {
		return false
	}
	return statusRank[s] < statusRank[current]
}

type Order struct {
	ID               string `gorm:"primaryKey;size:36"`
	OrderNumber      string `gorm:"uniqueIndex;size:40"`
	PaymentSessionID string `gorm:"uniqueIndex;size:255"`

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	ShippingLine1    string
	ShippingLine2    string
	ShippingCity     string
	ShippingPostcode string
	ShippingCountry  string

	BillingLine1    string
	BillingLine2    string
	BillingCity     string
	BillingPostcode string
	BillingCountry  string

	DeliveryOption string
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2)"`

	Status         Status `gorm:"size:20"`
	TrackingNumber string
	DispatchedAt   *time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"index;size:36"`

	Sku         string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2)"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2)"`

	// Snapshot of the purchased configuration. The live product can change or
	// disappear after the sale, so these are copied, not referenced.
	Size     string
	Color    string
	Depth    string
	Firmness string
	Length   string
	Width    string
	Height   string
	Weight   string
	Material string
	Brand    string
}
