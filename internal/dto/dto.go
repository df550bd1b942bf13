package dto

type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type Customer struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Shipping  *Address `json:"shippingAddress,omitempty"`
	Billing   *Address `json:"billingAddress,omitempty"`
}

// Item carries the full purchased configuration from the client's cart. The
// payment provider never sees most of these fields, which is why the payload
// is the preferred source during reconciliation.
type Item struct {
	Sku          string  `json:"sku"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	Quantity     int     `json:"quantity"`
	Size         string  `json:"size,omitempty"`
	Color        string  `json:"color,omitempty"`
	Depth        string  `json:"depth,omitempty"`
	Firmness     string  `json:"firmness,omitempty"`
	Length       string  `json:"length,omitempty"`
	Width        string  `json:"width,omitempty"`
	Height       string  `json:"height,omitempty"`
	Weight       string  `json:"weight,omitempty"`
	Material     string  `json:"material,omitempty"`
	Brand        string  `json:"brand,omitempty"`
}

type FinalizeOrderRequest struct {
	PaymentSessionID string    `json:"paymentSessionId"`
	Customer         *Customer `json:"customer,omitempty"`
	Items            []Item    `json:"items,omitempty"`
	DeliveryOption   string    `json:"deliveryOption,omitempty"`
}

type FinalizeOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type StatusChangeRequest struct {
	NewStatus      string `json:"newStatus"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type DispatchRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}
