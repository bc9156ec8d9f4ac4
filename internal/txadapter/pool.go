package txadapter

import (
	"context"
	"sync"
)

// PoolProvider is the paginated source a Pool wraps — satisfied by
// *Adapter, and by fakes in tests.
type PoolProvider interface {
	Page(ctx context.Context, cursor Cursor, limit int) ([]TransactionModel, error)
	SubscribeItemsUpdated() (<-chan ItemsUpdate, func())
	SubscribeLastBlockUpdated() (<-chan LastBlockUpdate, func())
}

// Pool caches one wallet's transactions by id on top of a PoolProvider,
// so repeated items_single calls at growing counts only fetch the
// incremental difference instead of re-paging from the start.
type Pool struct {
	walletID string
	provider PoolProvider

	mu          sync.Mutex
	byID        map[string]TransactionModel
	ordered     []string // ids in display order
	invalidated bool
	allLoaded   bool

	pub        *broadcaster[ItemsUpdate]
	unsubItems func()
}

// NewPool wraps provider for one wallet. Call Close to release its
// subscription to the provider's partial-batch stream.
func NewPool(walletID string, provider PoolProvider) *Pool {
	p := &Pool{
		walletID: walletID,
		provider: provider,
		byID:     make(map[string]TransactionModel),
		pub:      newBroadcaster[ItemsUpdate](),
	}
	items, unsub := provider.SubscribeItemsUpdated()
	p.unsubItems = unsub
	go func() {
		for update := range items {
			p.mergeBatch(update.Items)
			p.pub.publish(update)
		}
	}()
	return p
}

// Close unsubscribes from the underlying provider.
func (p *Pool) Close() {
	if p.unsubItems != nil {
		p.unsubItems()
	}
}

// SubscribeItemsUpdated streams partial batches as the provider's
// underlying pages decode, the same shape as Adapter.SubscribeItemsUpdated.
func (p *Pool) SubscribeItemsUpdated() (<-chan ItemsUpdate, func()) {
	return p.pub.Subscribe()
}

// Invalidate marks the cache stale: the next itemsSingle call re-pages
// from the start instead of trusting the cached prefix.
func (p *Pool) Invalidate() {
	p.mu.Lock()
	p.invalidated = true
	p.mu.Unlock()
}

// ItemsSingle returns the first count transactions, fetching only the
// incremental difference when the cache already covers a shorter prefix.
func (p *Pool) ItemsSingle(ctx context.Context, count int) ([]TransactionModel, error) {
	p.mu.Lock()
	invalidated := p.invalidated
	cached := len(p.ordered)
	allLoaded := p.allLoaded
	var lastID string
	if cached > 0 {
		lastID = p.ordered[cached-1]
	}
	p.mu.Unlock()

	switch {
	case invalidated:
		page, err := p.provider.Page(ctx, "", count)
		if err != nil {
			return nil, err
		}
		p.replace(page, len(page) < count)
		return p.snapshot(count), nil

	case count > cached && !allLoaded:
		page, err := p.provider.Page(ctx, encodeCursor(cursorHeightFor(p, lastID), lastID), count-cached)
		if err != nil {
			return nil, err
		}
		p.appendAll(page, len(page) < count-cached)
		return p.snapshot(count), nil

	default:
		return p.snapshot(count), nil
	}
}

func cursorHeightFor(p *Pool, id string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.byID[id]
	if !ok || m.BlockHeight == nil {
		return 0
	}
	return *m.BlockHeight
}

func (p *Pool) replace(items []TransactionModel, allLoaded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID = make(map[string]TransactionModel, len(items))
	p.ordered = p.ordered[:0]
	for _, m := range items {
		p.byID[m.Txid] = m
		p.ordered = append(p.ordered, m.Txid)
	}
	p.invalidated = false
	p.allLoaded = allLoaded
}

func (p *Pool) appendAll(items []TransactionModel, allLoaded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range items {
		if _, ok := p.byID[m.Txid]; ok {
			continue
		}
		p.byID[m.Txid] = m
		p.ordered = append(p.ordered, m.Txid)
	}
	p.allLoaded = allLoaded
}

func (p *Pool) mergeBatch(items []TransactionModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range items {
		if _, ok := p.byID[m.Txid]; !ok {
			p.ordered = append(p.ordered, m.Txid)
		}
		p.byID[m.Txid] = m
	}
}

func (p *Pool) snapshot(count int) []TransactionModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := count
	if n > len(p.ordered) {
		n = len(p.ordered)
	}
	out := make([]TransactionModel, 0, n)
	for _, id := range p.ordered[:n] {
		out = append(out, p.byID[id])
	}
	return out
}

// PoolGroup merges multiple wallets' pools by id, exposing their combined
// items_updated stream. This spec's single-wallet-at-a-time usage only
// ever populates one pool, but the type generalizes to more without a
// rewrite.
type PoolGroup struct {
	mu    sync.Mutex
	pools map[string]*Pool

	pub *broadcaster[ItemsUpdate]
}

// NewPoolGroup constructs an empty group; add pools with Add.
func NewPoolGroup() *PoolGroup {
	return &PoolGroup{
		pools: make(map[string]*Pool),
		pub:   newBroadcaster[ItemsUpdate](),
	}
}

// Add registers walletID's pool and forwards its partial-batch stream
// into the group's combined stream.
func (g *PoolGroup) Add(walletID string, pool *Pool) {
	g.mu.Lock()
	g.pools[walletID] = pool
	g.mu.Unlock()

	items, _ := pool.SubscribeItemsUpdated()
	go func() {
		for update := range items {
			g.pub.publish(update)
		}
	}()
}

// Remove drops walletID's pool from the group.
func (g *PoolGroup) Remove(walletID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pools, walletID)
}

// SubscribeItemsUpdated streams every member pool's partial batches.
func (g *PoolGroup) SubscribeItemsUpdated() (<-chan ItemsUpdate, func()) {
	return g.pub.Subscribe()
}

// Invalidate marks every member pool's cache stale.
func (g *PoolGroup) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.pools {
		p.Invalidate()
	}
}
