package domain

// LineItem is one product plus quantity inside a cart, prior to checkout.
// UnitPrice, Name, Image and Slug are captured at the time the item is added.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Image     string  `json:"image,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// LineTotal returns unit price × quantity for this line.
func (li *LineItem) LineTotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Cart is the client-session cart aggregate: an ordered collection of line
// items with at most one line per product. All mutations keep the invariant
// Quantity >= 1; driving a quantity to zero removes the line.
type Cart struct {
	Items []LineItem `json:"items"`
}

// AddItem merges the product into the cart. An existing line for the same
// product has its quantity incremented; otherwise a new line is appended with
// the product's current name, price, image and slug frozen in. Quantities
// below 1 are normalized to 1.
func (c *Cart) AddItem(p Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	if i := c.findIndex(p.ID); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}

	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}

	c.Items = append(c.Items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     image,
		UnitPrice: p.Price,
		Quantity:  quantity,
	})
}

// RemoveItem deletes the line for the given product. Removing an absent
// product is a no-op.
func (c *Cart) RemoveItem(productID string) {
	if i := c.findIndex(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity replaces the quantity for the given product. A quantity of
// zero or less removes the line. Updating an absent product is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if i := c.findIndex(productID); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Subtotal returns Σ(unitPrice × quantity) over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for i := range c.Items {
		total += c.Items[i].LineTotal()
	}
	return total
}

// ItemCount returns Σ(quantity) over all lines.
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) findIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
