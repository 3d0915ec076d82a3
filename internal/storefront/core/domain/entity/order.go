package entity

// OrderItem is one line of an order as sent to the sales service.
type OrderItem struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// NewOrder is the payload for creating an order in the sales service before
// the payment attempt starts.
type NewOrder struct {
	Items         []OrderItem `json:"items"`
	Subtotal      int         `json:"subtotal"`
	Total         int         `json:"total"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Delivery      string      `json:"delivery"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
}

// Order is an order record as returned by the sales service.
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     int         `json:"total"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

// Order lifecycle states used by the storefront. The sales service owns the
// full set; these are the ones this client writes.
const (
	OrderStatusPendingPayment = "pendiente_pago"
	OrderStatusPaid           = "pagado"
	OrderStatusCancelled      = "cancelado"
)
