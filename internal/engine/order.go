package engine

import "vanir/internal/common"

// bidLess orders bids richest first, then soonest expiring, then earliest
// placed. The sequence makes every key unique within a book.
func bidLess(a, b *common.BidOrder) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if a.ExpiryTurn != b.ExpiryTurn {
		return a.ExpiryTurn < b.ExpiryTurn
	}
	return a.Sequence < b.Sequence
}

// askLess orders asks cheapest buyout first, then soonest expiring, then
// earliest placed.
func askLess(a, b *common.AskOrder) bool {
	if a.BuyoutPrice != b.BuyoutPrice {
		return a.BuyoutPrice < b.BuyoutPrice
	}
	if a.ExpiryTurn != b.ExpiryTurn {
		return a.ExpiryTurn < b.ExpiryTurn
	}
	return a.Sequence < b.Sequence
}

// tradeFee is notional * ratio, discounted by 0.1% per trading skill level.
func tradeFee(notional, ratio float64, skill int) float64 {
	return notional * ratio * max(1-float64(skill)*0.001, 0)
}
