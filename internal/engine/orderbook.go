package engine

import (
	"vanir/internal/common"

	"github.com/tidwall/btree"
)

type (
	BidLevels = btree.BTreeG[*common.BidOrder]
	AskLevels = btree.BTreeG[*common.AskOrder]
)

// OrderBook holds the resting orders of one item type. Orders are pointers
// so partial fills mutate them in place; quantity is not part of the sort
// key, so this never reorders the tree.
type OrderBook struct {
	itemType string

	bids *BidLevels
	asks *AskLevels

	// Some book keeping
	buyQuantity  uint64 // Track the bid-side liquidity of the book.
	sellQuantity uint64 // Track the ask-side liquidity of the book.
}

func NewOrderBook(itemType string) *OrderBook {
	return &OrderBook{
		itemType: itemType,
		// Sorted greatest price first.
		bids: btree.NewBTreeG(bidLess),
		// Sorted least buyout first.
		asks: btree.NewBTreeG(askLess),
	}
}

func (book *OrderBook) insertBid(order *common.BidOrder) {
	book.bids.Set(order)
	book.buyQuantity += order.Quantity
}

func (book *OrderBook) insertAsk(order *common.AskOrder) {
	book.asks.Set(order)
	book.sellQuantity += order.Quantity
}

// fillBid takes qty off a resting bid, dropping it once empty.
func (book *OrderBook) fillBid(order *common.BidOrder, qty uint64) {
	order.Quantity -= qty
	book.buyQuantity -= qty
	if order.Quantity == 0 {
		book.bids.Delete(order)
	}
}

func (book *OrderBook) fillAsk(order *common.AskOrder, qty uint64) {
	order.Quantity -= qty
	book.sellQuantity -= qty
	if order.Quantity == 0 {
		book.asks.Delete(order)
	}
}

// removeBid drops whatever remains of a bid.
func (book *OrderBook) removeBid(order *common.BidOrder) {
	book.buyQuantity -= order.Quantity
	book.bids.Delete(order)
}

func (book *OrderBook) removeAsk(order *common.AskOrder) {
	book.sellQuantity -= order.Quantity
	book.asks.Delete(order)
}

func (book *OrderBook) empty() bool {
	return book.bids.Len() == 0 && book.asks.Len() == 0
}

// BidOrders returns copies of the bids in priority order.
func (book *OrderBook) BidOrders() []common.BidOrder {
	items := book.bids.Items()
	out := make([]common.BidOrder, len(items))
	for i, o := range items {
		out[i] = *o
	}
	return out
}

// AskOrders returns copies of the asks in priority order.
func (book *OrderBook) AskOrders() []common.AskOrder {
	items := book.asks.Items()
	out := make([]common.AskOrder, len(items))
	for i, o := range items {
		out[i] = *o
	}
	return out
}

// Liquidity is the total resting quantity on each side.
func (book *OrderBook) Liquidity() (buy, sell uint64) {
	return book.buyQuantity, book.sellQuantity
}
