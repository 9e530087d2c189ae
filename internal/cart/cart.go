package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/storecashier/cashier-backend/pkg/db/models"
	"github.com/storecashier/cashier-backend/pkg/money"
)

// Line is one cart entry: a product plus the number of scans for it.
type Line struct {
	Product models.Product `json:"product"`
	Qty     int            `json:"qty"`
}

// Total returns the line amount as price times quantity.
func (l Line) Total() decimal.Decimal {
	return money.LineTotal(l.Product.Price, l.Qty)
}

// Cart accumulates scanned products for a single checkout session.
// Newly scanned products go to the front; rescanning a barcode bumps
// the qty of its existing line instead of adding another.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddOrMerge records one scan of the product. It returns the index the
// line ended up at.
func (c *Cart) AddOrMerge(product models.Product) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.Barcode == product.Barcode {
			c.lines[i].Qty++
			return i
		}
	}
	c.lines = append([]Line{{Product: product, Qty: 1}}, c.lines...)
	return 0
}

// Remove drops the line at index. Out-of-range indexes are ignored.
func (c *Cart) Remove(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the current lines, newest first.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Total sums every line amount.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Total())
	}
	return total
}
