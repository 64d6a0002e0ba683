package common

import (
	"fmt"
)

// Transaction records a settled trade between a buyer and a seller. It is
// never mutated after creation.
type Transaction struct {
	ID       string  `json:"id"`
	ItemType string  `json:"item_type"`
	Quantity uint64  `json:"quantity"`
	Price    float64 `json:"price"`
	Buyer    string  `json:"buyer"`
	Seller   string  `json:"seller"`
	Turn     uint64  `json:"turn"`
	Origin   string  `json:"origin"`
}

// Notional is the total value exchanged.
func (t Transaction) Notional() float64 {
	return float64(t.Quantity) * t.Price
}

func (t Transaction) String() string {
	return fmt.Sprintf(
		`ID:       %s
ItemType: %s
Quantity: %d
Price:    %f
Buyer:    %s
Seller:   %s
Turn:     %d
Origin:   %s`,
		t.ID,
		t.ItemType,
		t.Quantity,
		t.Price,
		t.Buyer,
		t.Seller,
		t.Turn,
		t.Origin,
	)
}
