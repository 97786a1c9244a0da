package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Quantity is only changed by order and sale
// reservations and their reversal.
type Product struct {
	ID          string          `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Description string          `json:"description" bson:"description"`
	Category    string          `json:"category" bson:"category"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	Brand       string          `json:"brand" bson:"brand"`
	Status      RecordStatus    `json:"status" bson:"status"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

// LineItem is an order or sale line. The display fields are a snapshot of the
// product taken when stock was reserved and never follow later product edits.
type LineItem struct {
	ProductID   string          `json:"product_id" bson:"product_id"`
	Name        string          `json:"name" bson:"name"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	Brand       string          `json:"brand,omitempty" bson:"brand,omitempty"`
	Category    string          `json:"category,omitempty" bson:"category,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// Subtotal returns price × quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SnapshotLine builds a line item from the product state observed at reservation time.
func SnapshotLine(p *Product, quantity int) LineItem {
	return LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
	}
}

// LinesTotal sums the subtotals of items.
func LinesTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
