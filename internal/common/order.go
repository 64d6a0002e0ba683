package common

import (
	"fmt"
)

// BidOrder is a resting intent to buy. The buyer's funds for the unmatched
// remainder (Quantity * Price) are held by the book until the order leaves it.
type BidOrder struct {
	ID         string  // Order tracked uuid
	Buyer      string  // Who owns this order
	ItemType   string  // Item identifier, resolved by the price reference
	Quantity   uint64  // Remaining quantity
	Price      float64 // Highest unit price the buyer pays
	ExpiryTurn uint64  // Last turn on which the order may rest
	Origin     string  // Location the order was placed at
	Sequence   uint64  // Arrival sequence within the book
}

// AskOrder is a resting intent to sell. The seller's inventory for the
// unmatched remainder is held by the book until the order leaves it.
type AskOrder struct {
	ID          string  // Order tracked uuid
	Seller      string  // Who owns this order
	ItemType    string  // Item identifier, resolved by the price reference
	Quantity    uint64  // Remaining quantity
	MinPrice    float64 // Reservation price, only used when the order expires
	BuyoutPrice float64 // Immediate execution price
	ExpiryTurn  uint64  // Last turn on which the order may rest
	Origin      string  // Location the order was placed at
	Sequence    uint64  // Arrival sequence within the book
}

// Reserved is the amount of funds still held for the order.
func (o BidOrder) Reserved() float64 {
	return float64(o.Quantity) * o.Price
}

func (o BidOrder) String() string {
	return fmt.Sprintf(
		`ID:         %v
Buyer:      %s
ItemType:   %s
Quantity:   %d
Price:      %f
ExpiryTurn: %d
Origin:     %s`,
		o.ID,
		o.Buyer,
		o.ItemType,
		o.Quantity,
		o.Price,
		o.ExpiryTurn,
		o.Origin,
	)
}

func (o AskOrder) String() string {
	return fmt.Sprintf(
		`ID:          %v
Seller:      %s
ItemType:    %s
Quantity:    %d
MinPrice:    %f
BuyoutPrice: %f
ExpiryTurn:  %d
Origin:      %s`,
		o.ID,
		o.Seller,
		o.ItemType,
		o.Quantity,
		o.MinPrice,
		o.BuyoutPrice,
		o.ExpiryTurn,
		o.Origin,
	)
}
