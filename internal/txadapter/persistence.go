package txadapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nimbuswallet/core/internal/fileutil"
)

const filePerm = 0o600

type indexItem struct {
	Txid   string `json:"txid"`
	Height *int64 `json:"height"`
}

type indexFile struct {
	Network string      `json:"network"`
	Items   []indexItem `json:"items"`
}

type cachesFile struct {
	Positions map[string]int   `json:"positions"`
	Headers   map[string]int64 `json:"headers"`
}

func (a *Adapter) indexPath() string {
	return filepath.Join(a.dataDir, fmt.Sprintf("tx_index_%s.json", a.network.Name()))
}

func (a *Adapter) cachesPath() string {
	return filepath.Join(a.dataDir, fmt.Sprintf("tx_caches_%s.json", a.network.Name()))
}

// loadIndex seeds the adapter's in-memory index and caches from the last
// persisted snapshot. A missing file is not an error: it means a cold start
// with no cached history yet, and invalidated stays true so the next
// EnsureIndex rebuilds from the network.
func (a *Adapter) loadIndex() error {
	data, err := os.ReadFile(a.indexPath()) //nolint:gosec // G304: path built from configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("txadapter: read index: %w", err)
	}

	var snap indexFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("txadapter: parse index: %w", err)
	}

	a.mu.Lock()
	a.heightMap = make(map[string]*int64, len(snap.Items))
	a.sortedTxids = a.sortedTxids[:0]
	for _, item := range snap.Items {
		a.heightMap[item.Txid] = item.Height
		a.sortedTxids = append(a.sortedTxids, item.Txid)
	}
	a.sortTxidsLocked()
	a.invalidated = false
	a.mu.Unlock()

	a.loadCaches()
	return nil
}

// loadCaches seeds posCache and headerTS from the last persisted snapshot.
// A missing or unreadable caches file just leaves both empty; intra-block
// positions and header timestamps are re-fetched lazily on demand.
func (a *Adapter) loadCaches() {
	data, err := os.ReadFile(a.cachesPath()) //nolint:gosec // G304: path built from configured data dir
	if err != nil {
		return
	}

	var snap cachesFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for key, pos := range snap.Positions {
		var height int64
		var txid string
		if _, err := fmt.Sscanf(key, "%d|%s", &height, &txid); err != nil {
			continue
		}
		a.posCache[posKey{height: height, txid: txid}] = pos
	}
	for key, ts := range snap.Headers {
		var height int64
		if _, err := fmt.Sscanf(key, "%d", &height); err != nil {
			continue
		}
		a.headerTS[height] = ts
	}
}

// persistIndex atomically writes the current txid index to disk.
func (a *Adapter) persistIndex() error {
	a.mu.Lock()
	snap := indexFile{
		Network: a.network.Name(),
		Items:   make([]indexItem, 0, len(a.sortedTxids)),
	}
	for _, txid := range a.sortedTxids {
		snap.Items = append(snap.Items, indexItem{Txid: txid, Height: a.heightMap[txid]})
	}
	a.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("txadapter: marshal index: %w", err)
	}
	if err := os.MkdirAll(a.dataDir, 0o750); err != nil {
		return fmt.Errorf("txadapter: create data dir: %w", err)
	}
	return fileutil.WriteAtomic(a.indexPath(), data, filePerm)
}

// persistCaches atomically writes the position and header-timestamp caches
// to disk. Best-effort: callers that can't persist still have a correct
// in-memory adapter, just one that re-fetches more on the next cold start.
func (a *Adapter) persistCaches() error {
	a.mu.Lock()
	snap := cachesFile{
		Positions: make(map[string]int, len(a.posCache)),
		Headers:   make(map[string]int64, len(a.headerTS)),
	}
	for key, pos := range a.posCache {
		snap.Positions[fmt.Sprintf("%d|%s", key.height, key.txid)] = pos
	}
	for height, ts := range a.headerTS {
		snap.Headers[fmt.Sprintf("%d", height)] = ts
	}
	a.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("txadapter: marshal caches: %w", err)
	}
	if err := os.MkdirAll(a.dataDir, 0o750); err != nil {
		return fmt.Errorf("txadapter: create data dir: %w", err)
	}
	return fileutil.WriteAtomic(a.cachesPath(), data, filePerm)
}
