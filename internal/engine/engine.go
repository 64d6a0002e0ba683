package engine

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"vanir/internal/clock"
	"vanir/internal/common"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// This is the marketplace matching engine: one order book per item type,
// all settling against the inventory of a single location.

type Deps struct {
	Clock    clock.Clock
	Wallets  Wallets
	Traders  Traders
	Storage  Storage
	Fees     FeeSink
	Log      TransactionLog
	Cooldown Cooldown // optional
}

type Engine struct {
	origin string
	cfg    Config
	deps   Deps

	mu    sync.Mutex
	books map[string]*OrderBook
	seq   uint64
}

// SweepResult summarises one expiry sweep.
type SweepResult struct {
	Transactions []common.Transaction
	CanceledBids []string
	CanceledAsks []string
}

func New(origin string, cfg Config, deps Deps) *Engine {
	return &Engine{
		origin: origin,
		cfg:    cfg,
		deps:   deps,
		books:  make(map[string]*OrderBook),
	}
}

func (e *Engine) Origin() string { return e.origin }

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// PlaceBid reserves quantity*price plus the placement fee from the buyer and
// rests the order in the book. Nothing changes when an error is returned.
func (e *Engine) PlaceBid(order common.BidOrder) (common.BidOrder, error) {
	if order.Quantity == 0 || !validPrice(order.Price) {
		return common.BidOrder{}, fmt.Errorf("%w: bid %d@%f", common.ErrInvalidQuantity, order.Quantity, order.Price)
	}
	if e.inCooldown() {
		return common.BidOrder{}, common.ErrEntityInCooldown
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cost := float64(order.Quantity) * order.Price
	fee := tradeFee(cost, e.cfg.BaseFeeRatio, e.deps.Traders.TradingSkill(order.Buyer))
	if available := e.deps.Wallets.Balance(order.Buyer); available < cost+fee {
		log.Warn().
			Str("buyer", order.Buyer).
			Str("item", order.ItemType).
			Float64("available", available).
			Float64("required", cost+fee).
			Msg("bid rejected")
		return common.BidOrder{}, common.ErrInsufficientFunds
	}

	e.deps.Wallets.Spend(order.Buyer, cost+fee)
	e.stamp(&order.ID, &order.Sequence, &order.ExpiryTurn, &order.Origin)

	placed := order
	e.book(order.ItemType).insertBid(&placed)
	e.collectFee(fee)

	log.Debug().
		Str("id", order.ID).
		Str("buyer", order.Buyer).
		Str("item", order.ItemType).
		Uint64("qty", order.Quantity).
		Float64("price", order.Price).
		Msg("bid placed")
	return order, nil
}

// PlaceAsk removes quantity from the seller's inventory and rests the order
// in the book. Nothing changes when an error is returned.
func (e *Engine) PlaceAsk(order common.AskOrder) (common.AskOrder, error) {
	if order.Quantity == 0 || !validPrice(order.MinPrice) || !validPrice(order.BuyoutPrice) {
		return common.AskOrder{}, fmt.Errorf("%w: ask %d@%f/%f", common.ErrInvalidQuantity, order.Quantity, order.MinPrice, order.BuyoutPrice)
	}
	if order.BuyoutPrice < order.MinPrice {
		return common.AskOrder{}, fmt.Errorf("%w: buyout %f below min price %f", common.ErrInvalidQuantity, order.BuyoutPrice, order.MinPrice)
	}
	if e.inCooldown() {
		return common.AskOrder{}, common.ErrEntityInCooldown
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deps.Storage.GetItem(order.Seller, order.ItemType) < order.Quantity ||
		!e.deps.Storage.RemoveItem(order.Seller, order.ItemType, order.Quantity) {
		log.Warn().
			Str("seller", order.Seller).
			Str("item", order.ItemType).
			Uint64("qty", order.Quantity).
			Msg("ask rejected")
		return common.AskOrder{}, common.ErrInsufficientInventory
	}

	e.stamp(&order.ID, &order.Sequence, &order.ExpiryTurn, &order.Origin)

	placed := order
	e.book(order.ItemType).insertAsk(&placed)

	log.Debug().
		Str("id", order.ID).
		Str("seller", order.Seller).
		Str("item", order.ItemType).
		Uint64("qty", order.Quantity).
		Float64("min", order.MinPrice).
		Float64("buyout", order.BuyoutPrice).
		Msg("ask placed")
	return order, nil
}

// stamp assigns the book-side fields of a new order. Assumes the lock is held.
func (e *Engine) stamp(id *string, seq, expiry *uint64, origin *string) {
	e.seq++
	*id = uuid.New().String()
	*seq = e.seq
	*origin = e.origin
	if *expiry == 0 {
		*expiry = e.deps.Clock.Turn() + e.cfg.OrderLifetime
	}
}

// Match crosses every book: bids in priority order each scan the asks in
// priority order and trade at the ask's buyout price while
// bid.Price >= ask.BuyoutPrice. A second call without new orders is a no-op.
func (e *Engine) Match() []common.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()

	var txs []common.Transaction
	for _, item := range e.itemsLocked() {
		book := e.books[item]
		txs = append(txs, e.matchBook(book)...)
		e.prune(item)
	}
	return txs
}

func (e *Engine) matchBook(book *OrderBook) []common.Transaction {
	var txs []common.Transaction
	for _, bid := range book.bids.Items() {
		for _, ask := range book.asks.Items() {
			// Asks are sorted by buyout, nothing further along can cross.
			if bid.Price < ask.BuyoutPrice {
				break
			}
			qty := min(bid.Quantity, ask.Quantity)
			txs = append(txs, e.execute(book, bid, ask, qty, ask.BuyoutPrice))
			if bid.Quantity == 0 {
				break
			}
		}
	}
	return txs
}

// execute settles qty units between a resting bid and ask at price, which is
// never above bid.Price. The buyer's reservation for qty is released as
// goods plus a refund of the price difference; the seller's reservation as
// revenue less the trade fee. Assumes the lock is held.
func (e *Engine) execute(book *OrderBook, bid *common.BidOrder, ask *common.AskOrder, qty uint64, price float64) common.Transaction {
	notional := float64(qty) * price

	e.deps.Storage.AddItem(bid.Buyer, book.itemType, qty)

	fee := tradeFee(notional, e.cfg.TradeFeeRatio, e.deps.Traders.TradingSkill(ask.Seller))
	e.deps.Wallets.Earn(ask.Seller, notional-fee)
	e.collectFee(fee)

	if refund := (bid.Price - price) * float64(qty); refund > 0 {
		e.deps.Wallets.Unspend(bid.Buyer, refund)
	}

	book.fillBid(bid, qty)
	book.fillAsk(ask, qty)

	tx := common.Transaction{
		ID:       uuid.New().String(),
		ItemType: book.itemType,
		Quantity: qty,
		Price:    price,
		Buyer:    bid.Buyer,
		Seller:   ask.Seller,
		Turn:     e.deps.Clock.Turn(),
		Origin:   e.origin,
	}
	e.deps.Log.PushTransaction(tx)
	e.deps.Traders.RecordTransaction(bid.Buyer)
	e.deps.Traders.RecordTransaction(ask.Seller)

	log.Debug().
		Str("item", tx.ItemType).
		Str("buyer", tx.Buyer).
		Str("seller", tx.Seller).
		Uint64("qty", qty).
		Float64("price", price).
		Msg("trade executed")
	return tx
}

// CleanUp removes every order whose expiry turn has passed. An expiring ask
// first gets one more chance against bids priced at or above its min price,
// trading at max(bid.Price, ask.MinPrice); whatever remains goes back to the
// seller. Expiring bids are canceled outright and their reservation refunded.
func (e *Engine) CleanUp(turn uint64) SweepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res SweepResult
	for _, item := range e.itemsLocked() {
		book := e.books[item]

		for _, ask := range book.asks.Items() {
			if ask.ExpiryTurn > turn {
				continue
			}
			res.Transactions = append(res.Transactions, e.finalCross(book, ask)...)
			if ask.Quantity > 0 {
				e.deps.Storage.AddItem(ask.Seller, item, ask.Quantity)
				book.removeAsk(ask)
				res.CanceledAsks = append(res.CanceledAsks, ask.ID)
			}
		}

		for _, bid := range book.bids.Items() {
			if bid.ExpiryTurn > turn {
				continue
			}
			e.deps.Wallets.Unspend(bid.Buyer, bid.Reserved())
			book.removeBid(bid)
			res.CanceledBids = append(res.CanceledBids, bid.ID)
		}

		e.prune(item)
	}

	if len(res.CanceledAsks)+len(res.CanceledBids) > 0 {
		log.Debug().
			Str("origin", e.origin).
			Uint64("turn", turn).
			Int("asks", len(res.CanceledAsks)).
			Int("bids", len(res.CanceledBids)).
			Int("trades", len(res.Transactions)).
			Msg("expired orders swept")
	}
	return res
}

func (e *Engine) finalCross(book *OrderBook, ask *common.AskOrder) []common.Transaction {
	var txs []common.Transaction
	for _, bid := range book.bids.Items() {
		// Bids are sorted by price, nothing further along can cross.
		if bid.Price < ask.MinPrice {
			break
		}
		qty := min(bid.Quantity, ask.Quantity)
		txs = append(txs, e.execute(book, bid, ask, qty, max(bid.Price, ask.MinPrice)))
		if ask.Quantity == 0 {
			break
		}
	}
	return txs
}

func (e *Engine) collectFee(fee float64) {
	if fee <= 0 || e.deps.Fees == nil {
		return
	}
	if err := e.deps.Fees.DistributeEarnings(fee); err != nil {
		log.Error().Err(err).Str("origin", e.origin).Float64("fee", fee).Msg("unable to route fee")
	}
}

func (e *Engine) inCooldown() bool {
	return e.deps.Cooldown != nil && e.deps.Cooldown.InCooldown()
}

// book returns the item's book, creating it. Assumes the lock is held.
func (e *Engine) book(item string) *OrderBook {
	book, ok := e.books[item]
	if !ok {
		book = NewOrderBook(item)
		e.books[item] = book
	}
	return book
}

func (e *Engine) prune(item string) {
	if book, ok := e.books[item]; ok && book.empty() {
		delete(e.books, item)
	}
}

func (e *Engine) itemsLocked() []string {
	items := make([]string, 0, len(e.books))
	for item := range e.books {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Items lists item types with resting orders, sorted.
func (e *Engine) Items() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemsLocked()
}

// Bids returns the item's bids in priority order.
func (e *Engine) Bids(item string) []common.BidOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		return book.BidOrders()
	}
	return nil
}

// Asks returns the item's asks in priority order.
func (e *Engine) Asks(item string) []common.AskOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		return book.AskOrders()
	}
	return nil
}

func (e *Engine) BestBid(item string) (common.BidOrder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		if o, ok := book.bids.Min(); ok {
			return *o, true
		}
	}
	return common.BidOrder{}, false
}

func (e *Engine) BestAsk(item string) (common.AskOrder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		if o, ok := book.asks.Min(); ok {
			return *o, true
		}
	}
	return common.AskOrder{}, false
}

// Depth is the number of resting orders on each side of the item's book.
func (e *Engine) Depth(item string) (bids, asks int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		return book.bids.Len(), book.asks.Len()
	}
	return 0, 0
}

// Liquidity is the resting quantity on each side of the item's book.
func (e *Engine) Liquidity(item string) (buy, sell uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if book, ok := e.books[item]; ok {
		return book.Liquidity()
	}
	return 0, 0
}
