package entity

// TransactionRequest is the payload for creating a payment transaction
// against the gateway. It is built fresh per attempt and never persisted;
// BuyOrder and SessionID must be unique per attempt to avoid gateway-side
// collisions.
type TransactionRequest struct {
	Amount    int    `json:"amount"`
	BuyOrder  string `json:"buyOrder"`
	SessionID string `json:"sessionId"`
	ReturnURL string `json:"returnUrl"`
}

// TransactionHandle is the gateway's answer to a create call: the hosted
// payment page URL and the opaque transaction token. It is consumed
// immediately by the redirect bridge and not persisted beyond that.
type TransactionHandle struct {
	URL      string
	Token    string
	BuyOrder string
	Amount   int
}

// ConfirmationStatus is the terminal classification of a confirmed
// transaction.
type ConfirmationStatus string

const (
	StatusAuthorized ConfirmationStatus = "authorized"
	StatusRejected   ConfirmationStatus = "rejected"
	StatusError      ConfirmationStatus = "error"
)

// ConfirmationResult is produced by confirming a transaction with the
// recovered token. It is terminal: it drives the UI to the success or
// failure page and triggers pending-purchase teardown.
type ConfirmationResult struct {
	Amount            int
	AuthorizationCode string
	Status            ConfirmationStatus
	BuyOrder          string
}

// PendingUser is the slice of user data that must survive the redirect.
type PendingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PendingPurchase is the cart/user snapshot persisted to durable storage
// immediately before the browser is handed off to the gateway, so the
// return handler can reconstruct context after full-page navigation.
type PendingPurchase struct {
	Items       []CartLine
	TotalAmount int
	User        PendingUser
}

// Empty reports whether nothing could be recovered from storage.
func (p PendingPurchase) Empty() bool {
	return len(p.Items) == 0 && p.TotalAmount == 0 && p.User == (PendingUser{})
}
