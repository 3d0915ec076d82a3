package entity

// User is an authenticated storefront user as returned by the sales
// service's /auth/login (or the built-in fallback accounts when the
// service is unreachable).
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"` // "admin" or "client"
}

// IsAdmin reports whether the user may see the admin dashboard.
func (u User) IsAdmin() bool {
	return u.Type == "admin"
}

// ExchangeRate is the CLP value of one unit of a foreign currency, as
// published by the central-bank indicator API.
type ExchangeRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	Date     string  `json:"date"`
}
