package txadapter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// CursorFor builds the opaque pagination cursor for the last item of a
// returned page; pass it back into Page to fetch the next one.
func CursorFor(m TransactionModel) Cursor {
	height := int64(0)
	if m.BlockHeight != nil {
		height = *m.BlockHeight
	}
	return encodeCursor(height, m.Txid)
}

func decodeCursor(c Cursor) (height int64, txid string, err error) {
	parts := strings.SplitN(string(c), "|", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("txadapter: malformed cursor %q", c)
	}
	height, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("txadapter: malformed cursor %q: %w", c, err)
	}
	return height, parts[1], nil
}

// Page returns up to limit transactions starting after cursor (empty cursor
// means start from the newest), in the adapter's total order. It rebuilds
// the index if invalidated, refines intra-block ordering for the ids on
// this page, and emits progressive ItemsUpdate batches as chunks decode.
func (a *Adapter) Page(ctx context.Context, cursor Cursor, limit int) ([]TransactionModel, error) {
	if err := a.EnsureIndex(ctx, limit); err != nil {
		return nil, err
	}

	ids, err := a.pageIDs(cursor, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := a.refineOrderWithPositions(ctx, ids); err != nil {
		a.logError("txadapter: refine order: %v", err)
	}

	_, owned, err := a.ownedAddresses()
	if err != nil {
		return nil, err
	}
	tip := a.tip.Load()

	models := make([]TransactionModel, 0, len(ids))
	for _, batch := range chunk(ids, maxConcDecode) {
		results := make([]TransactionModel, len(batch))
		var wg sync.WaitGroup
		for i, txid := range batch {
			wg.Add(1)
			go func(i int, txid string) {
				defer wg.Done()
				a.mu.Lock()
				height := a.heightMap[txid]
				a.mu.Unlock()
				m, buildErr := a.buildModel(ctx, txid, owned, tip, height)
				if buildErr != nil {
					a.logError("txadapter: build model for %s: %v", txid, buildErr)
					return
				}
				results[i] = m
			}(i, txid)
		}
		wg.Wait()

		valid := make([]TransactionModel, 0, len(batch))
		for _, m := range results {
			if m.Txid != "" {
				valid = append(valid, m)
			}
		}
		models = append(models, valid...)
		a.pub.items.publish(ItemsUpdate{WalletID: a.walletID, Items: valid})
	}

	sort.SliceStable(models, func(i, j int) bool { return models[i].Timestamp > models[j].Timestamp })
	return models, nil
}

// pageIDs locates the starting point for cursor under the total order and
// returns up to limit ids from sortedTxids.
func (a *Adapter) pageIDs(cursor Cursor, limit int) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := 0
	if cursor != "" {
		height, txid, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}

		found := -1
		for i, id := range a.sortedTxids {
			if id == txid {
				found = i
				break
			}
		}
		if found >= 0 {
			start = found + 1
		} else {
			cursorKey := rankKey{height: cursorEffectiveHeight(height), pos: 0, txid: txid}
			start = sort.Search(len(a.sortedTxids), func(i int) bool {
				return cursorKey.less(a.keyForLocked(a.sortedTxids[i]))
			})
		}
	}

	if start >= len(a.sortedTxids) {
		return nil, nil
	}
	end := start + limit
	if end > len(a.sortedTxids) {
		end = len(a.sortedTxids)
	}
	out := make([]string, end-start)
	copy(out, a.sortedTxids[start:end])
	return out, nil
}

func cursorEffectiveHeight(height int64) int64 {
	if height == 0 {
		return math.MaxInt64
	}
	return height
}

// refineOrderWithPositions reorders ids in place: mempool entries keep
// their input order at the front, confirmed entries are grouped by height
// (preserving first-seen height order) and, within each group, sorted by
// intra-block position (fetched and cached as needed) then txid.
func (a *Adapter) refineOrderWithPositions(ctx context.Context, ids []string) error {
	a.mu.Lock()
	var mempool []string
	var heightOrder []int64
	seen := make(map[int64]bool)
	groups := make(map[int64][]string)
	for _, id := range ids {
		h := a.heightMap[id]
		if h == nil {
			mempool = append(mempool, id)
			continue
		}
		if !seen[*h] {
			seen[*h] = true
			heightOrder = append(heightOrder, *h)
		}
		groups[*h] = append(groups[*h], id)
	}
	a.mu.Unlock()

	for _, height := range heightOrder {
		group := groups[height]
		if err := a.resolvePositions(ctx, height, group); err != nil {
			a.logError("txadapter: resolve positions for height %d: %v", height, err)
		}
		a.mu.Lock()
		sort.Slice(group, func(i, j int) bool {
			pi := a.posCache[posKey{height: height, txid: group[i]}]
			pj := a.posCache[posKey{height: height, txid: group[j]}]
			if pi != pj {
				return pi < pj
			}
			return group[i] < group[j]
		})
		a.mu.Unlock()
	}

	out := ids[:0:0]
	out = append(out, mempool...)
	for _, height := range heightOrder {
		out = append(out, groups[height]...)
	}
	copy(ids, out)

	if err := a.persistCaches(); err != nil {
		a.logError("txadapter: persist caches: %v", err)
	}
	return nil
}

func (a *Adapter) resolvePositions(ctx context.Context, height int64, txids []string) error {
	a.mu.Lock()
	var missing []string
	for _, txid := range txids {
		if _, ok := a.posCache[posKey{height: height, txid: txid}]; !ok {
			missing = append(missing, txid)
		}
	}
	a.mu.Unlock()
	if len(missing) == 0 {
		return nil
	}

	var firstErr error
	for _, batch := range chunk(missing, maxConcPos) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, txid := range batch {
			wg.Add(1)
			go func(txid string) {
				defer wg.Done()
				pos, err := retryWithBackoff(ctx, positionRetry, func() (int, error) {
					m, err := a.client.GetMerkle(ctx, txid, height)
					if err != nil {
						return 0, err
					}
					return m.Pos, nil
				})
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				a.mu.Lock()
				a.posCache[posKey{height: height, txid: txid}] = pos
				a.mu.Unlock()
			}(txid)
		}
		wg.Wait()
	}
	return firstErr
}
