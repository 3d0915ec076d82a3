package entity

// CartLine is one product entry in a shopping cart. UnitPrice is in integer
// Chilean pesos; Quantity is always positive, a line whose quantity drops
// to zero is removed from the cart.
type CartLine struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-session shopping cart. It is mutated only through the
// methods below and persisted as JSON in the session store.
type Cart struct {
	Items []CartLine `json:"items"`
}

// Add merges a line into the cart, summing quantities for lines that refer
// to the same product. Non-positive quantities are ignored.
func (c *Cart) Add(line CartLine) {
	if line.Quantity <= 0 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == line.ProductID {
			c.Items[i].Quantity += line.Quantity
			return
		}
	}
	c.Items = append(c.Items, line)
}

// SetQuantity replaces the quantity for a product. Setting zero (or less)
// removes the line.
func (c *Cart) SetQuantity(productID, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the line for a product, if present.
func (c *Cart) Remove(productID int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Subtotal is the sum of unit price times quantity across all lines.
func (c *Cart) Subtotal() int {
	total := 0
	for _, it := range c.Items {
		total += it.UnitPrice * it.Quantity
	}
	return total
}

// Units is the total number of units across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
