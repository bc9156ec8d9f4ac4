package txadapter

import (
	"context"
	"sync"

	"github.com/nimbuswallet/core/internal/electrum"
)

// EnsureIndex rebuilds the in-memory txid index when invalidated. The first
// batch of address history lookups runs synchronously; if it already
// yields minCount transactions the call returns and the remaining batches
// continue in a detached background goroutine. Exactly one ensureIndex
// runs at a time per wallet — concurrent callers serialize on rebuildMu and
// typically find the index already valid by the time they acquire it.
func (a *Adapter) EnsureIndex(ctx context.Context, minCount int) error {
	a.mu.Lock()
	valid := !a.invalidated && len(a.sortedTxids) > 0
	a.mu.Unlock()
	if valid {
		return nil
	}

	a.rebuildMu.Lock()
	defer a.rebuildMu.Unlock()

	// Re-check: another caller may have rebuilt it while we waited.
	a.mu.Lock()
	valid = !a.invalidated && len(a.sortedTxids) > 0
	a.mu.Unlock()
	if valid {
		return nil
	}

	addresses, _, err := a.ownedAddresses()
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return ErrNoWalletAddresses
	}

	a.mu.Lock()
	a.heightMap = make(map[string]*int64)
	a.sortedTxids = a.sortedTxids[:0]
	a.mu.Unlock()

	batches := chunk(addresses, maxConcHistory)

	for i, batch := range batches {
		if err := a.fetchHistoryBatch(ctx, batch); err != nil {
			return err
		}

		a.mu.Lock()
		count := len(a.sortedTxids)
		a.mu.Unlock()

		if count >= minCount {
			a.mu.Lock()
			a.invalidated = false
			a.mu.Unlock()
			if err := a.persistIndex(); err != nil {
				a.logError("txadapter: persist index: %v", err)
			}

			remaining := batches[i+1:]
			if len(remaining) > 0 {
				a.startBackgroundRebuild(remaining)
			}
			return nil
		}
	}

	a.mu.Lock()
	a.invalidated = false
	a.mu.Unlock()
	if err := a.persistIndex(); err != nil {
		a.logError("txadapter: persist index: %v", err)
	}
	return nil
}

func (a *Adapter) fetchHistoryBatch(ctx context.Context, addresses []string) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	merged := make(map[string]*int64)

	for _, addr := range addresses {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			scripthash, err := electrum.ScriptHashForAddress(address)
			if err != nil {
				return
			}
			entries, err := a.client.GetHistory(ctx, scripthash)
			if err != nil {
				return
			}
			mu.Lock()
			for _, e := range entries {
				applyHistoryEntry(merged, e)
			}
			mu.Unlock()
		}(addr)
	}
	wg.Wait()

	a.mu.Lock()
	for txid, height := range merged {
		existing, ok := a.heightMap[txid]
		if !ok || (existing == nil && height != nil) {
			a.heightMap[txid] = height
		}
		if !ok {
			a.sortedTxids = append(a.sortedTxids, txid)
		}
	}
	a.sortTxidsLocked()
	a.mu.Unlock()
	return nil
}

func applyHistoryEntry(merged map[string]*int64, e electrum.HistoryEntry) {
	if e.Height > 0 {
		h := e.Height
		merged[e.TxHash] = &h
		return
	}
	if _, ok := merged[e.TxHash]; !ok {
		merged[e.TxHash] = nil
	}
}

func (a *Adapter) startBackgroundRebuild(remaining [][]string) {
	gen := a.rebuildGen.Add(1)
	if a.cancelBG != nil {
		a.cancelBG()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBG = cancel

	go func() {
		for _, batch := range remaining {
			if ctx.Err() != nil {
				return
			}
			_ = a.fetchHistoryBatch(ctx, batch)

			if a.rebuildGen.Load() != gen {
				return // superseded by a newer rebuild or wallet switch
			}
			_ = a.persistIndex()
		}
	}()
}

// Invalidate marks the index stale; the next EnsureIndex call rebuilds it.
func (a *Adapter) Invalidate() {
	a.mu.Lock()
	a.invalidated = true
	a.mu.Unlock()
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
