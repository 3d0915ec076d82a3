package entity

// Product is a catalog record as served by the inventory API. Price is in
// integer Chilean pesos.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
}

// StockCheck is the answer to "can I sell N units of product X right now".
type StockCheck struct {
	Available    bool
	CurrentStock int
	ProductName  string
}
