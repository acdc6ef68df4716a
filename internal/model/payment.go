package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Payment records a successful charge for a parcel.
//
// Fields:
//
//	ID            – opaque identifier generated by the store.
//	ParcelID      – parcel the payment settles.
//	Amount        – charged amount in the gateway currency.
//	TransactionID – gateway transaction reference.
//	CreatedBy     – email of the payer.
//	PaymentMethod – gateway method description (card brand, wallet...).
//	PaidAtString  – ISO-8601 rendering of PaidAt kept for the web client.
//	PaidAt        – native timestamp used for sorting.
type Payment struct {
	ID            string          `json:"_id"`
	ParcelID      string          `json:"parcel_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	CreatedBy     string          `json:"created_by"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaidAtString  string          `json:"paid_at_string"`
	PaidAt        time.Time       `json:"paid_at"`
}

// MarshalJSON writes the amount as a JSON number, the way clients send it.
func (p Payment) MarshalJSON() ([]byte, error) {
	type alias Payment
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"amount"`
	}{alias: alias(p), Amount: json.Number(p.Amount.String())})
}
