package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of point-of-sale payment methods.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// ParsePaymentMethod rejects anything outside the closed set.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch pm := PaymentMethod(s); pm {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return pm, nil
	}
	return "", fmt.Errorf("%w: payment_method must be one of: cash card transfer", ErrValidation)
}

// Sale is a point-of-sale transaction. It is active from creation and only
// moves to inactive, which restores its stock.
type Sale struct {
	ID             string          `json:"id" bson:"_id"`
	Items          []LineItem      `json:"items" bson:"items"`
	DocumentNumber string          `json:"document_number" bson:"document_number"`
	Total          decimal.Decimal `json:"total" bson:"total"`
	PaymentMethod  PaymentMethod   `json:"payment_method" bson:"payment_method"`
	Status         RecordStatus    `json:"status" bson:"status"`
	CashierID      string          `json:"cashier_id,omitempty" bson:"cashier_id,omitempty"`
	SoldAt         time.Time       `json:"sold_at" bson:"sold_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
	Version        int64           `json:"version" bson:"version"`
}
