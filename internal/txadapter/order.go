package txadapter

import (
	"math"
	"sort"
)

// effectiveHeight maps a possibly-unknown height to a comparable integer:
// mempool (nil) sorts as "newest", i.e. larger than any real height.
func effectiveHeight(h *int64) int64 {
	if h == nil {
		return math.MaxInt64
	}
	return *h
}

// rankKey is a transaction's position in the total order: (effective
// height desc, intra-block position asc, txid asc).
type rankKey struct {
	height int64
	pos    int
	txid   string
}

// less reports whether a ranks strictly before b (a is newer/first).
func (a rankKey) less(b rankKey) bool {
	if a.height != b.height {
		return a.height > b.height
	}
	if a.pos != b.pos {
		return a.pos < b.pos
	}
	return a.txid < b.txid
}

// keyFor builds id's rank key from the adapter's current height/pos caches.
// Callers must hold a.mu.
func (a *Adapter) keyForLocked(txid string) rankKey {
	height := a.heightMap[txid]
	eff := effectiveHeight(height)
	pos := 0
	if height != nil {
		pos = a.posCache[posKey{height: *height, txid: txid}]
	}
	return rankKey{height: eff, pos: pos, txid: txid}
}

// sortTxidsLocked re-sorts sortedTxids in place by the total order. Callers
// must hold a.mu.
func (a *Adapter) sortTxidsLocked() {
	keys := make(map[string]rankKey, len(a.sortedTxids))
	for _, id := range a.sortedTxids {
		keys[id] = a.keyForLocked(id)
	}
	ids := a.sortedTxids
	sort.Slice(ids, func(i, j int) bool { return keys[ids[i]].less(keys[ids[j]]) })
}
