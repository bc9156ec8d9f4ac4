package txadapter

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/config"
	"github.com/nimbuswallet/core/internal/txmodel"
)

// maxConcHistory, maxConcDecode, and maxConcPos bound the adapter's
// concurrent fan-out for history lookups, transaction decoding, and
// intra-block position lookups respectively.
const (
	maxConcHistory = 6
	maxConcDecode  = 6
	maxConcPos     = 6

	decodeCacheCapacity = 512
)

type posKey struct {
	height int64
	txid   string
}

// Adapter owns one wallet's in-memory txid index and presents it as a
// cursor-paginated, reorg-aware stream of TransactionModel values. Exactly
// one Adapter exists per wallet; all of its state is protected by mu except
// for the decode cache (which has its own lock) and the background-rebuild
// bookkeeping (rebuildMu).
type Adapter struct {
	walletID string
	network  bip84.Network
	client   ElectrumSource
	repo     WalletSource
	dataDir  string
	logger   *config.Logger

	mu          sync.Mutex
	heightMap   map[string]*int64 // txid -> height (nil = mempool)
	sortedTxids []string
	posCache    map[posKey]int
	headerTS    map[int64]int64
	invalidated bool

	decodeCache *lruCache[string, *txmodel.DecodedTx]

	rebuildMu  sync.Mutex
	rebuildGen atomic.Uint64
	cancelBG   context.CancelFunc

	tip atomic.Int64

	pub        *adapterPublishers
	unsubBlock func()
	unsubAddr  func()
}

type adapterPublishers struct {
	items     *broadcaster[ItemsUpdate]
	lastBlock *broadcaster[LastBlockUpdate]
}

// New constructs an Adapter for one wallet. logger may be nil, in which case
// cache/persistence failures (always non-fatal, per the adapter's error
// policy) are simply swallowed instead of logged. Call Close when the
// wallet is switched away from or the wallet repository is shutting down.
func New(walletID string, network bip84.Network, client ElectrumSource, repo WalletSource, dataDir string, logger *config.Logger) *Adapter {
	a := &Adapter{
		walletID:    walletID,
		network:     network,
		client:      client,
		repo:        repo,
		dataDir:     dataDir,
		logger:      logger,
		heightMap:   make(map[string]*int64),
		posCache:    make(map[posKey]int),
		headerTS:    make(map[int64]int64),
		invalidated: true,
		decodeCache: newLRUCache[string, *txmodel.DecodedTx](decodeCacheCapacity),
		pub: &adapterPublishers{
			items:     newBroadcaster[ItemsUpdate](),
			lastBlock: newBroadcaster[LastBlockUpdate](),
		},
	}
	_ = a.loadIndex() // cold-start seed; a missing file just leaves invalidated=true
	a.subscribeStreams()
	return a
}

// SubscribeItemsUpdated streams progressive page batches as they decode.
func (a *Adapter) SubscribeItemsUpdated() (<-chan ItemsUpdate, func()) {
	return a.pub.items.Subscribe()
}

// SubscribeLastBlockUpdated streams tip-height changes.
func (a *Adapter) SubscribeLastBlockUpdated() (<-chan LastBlockUpdate, func()) {
	return a.pub.lastBlock.Subscribe()
}

// TipHeight returns the most recent chain tip height the adapter has
// observed via headers.subscribe, or 0 before the first notification
// arrives. Used by callers that need to turn a UTXO's block height into a
// confirmation count without keeping their own subscription.
func (a *Adapter) TipHeight() int64 {
	return a.tip.Load()
}

// Close cancels any in-flight background rebuild and unsubscribes from the
// Electrum client's publishers.
func (a *Adapter) Close() {
	a.rebuildMu.Lock()
	if a.cancelBG != nil {
		a.cancelBG()
	}
	a.rebuildMu.Unlock()
	if a.unsubBlock != nil {
		a.unsubBlock()
	}
	if a.unsubAddr != nil {
		a.unsubAddr()
	}
}

// logError records a non-fatal failure (persistence, best-effort metadata
// upsert) without propagating it; the in-memory state remains authoritative
// for the session regardless.
func (a *Adapter) logError(format string, args ...any) {
	if a.logger != nil {
		a.logger.Error(format, args...)
	}
}

func (a *Adapter) ownedAddresses() ([]string, map[string]bool, error) {
	addrs, err := a.repo.Addresses(a.walletID, nil)
	if err != nil {
		return nil, nil, err
	}
	list := make([]string, 0, len(addrs))
	owned := make(map[string]bool, len(addrs))
	for _, addr := range addrs {
		list = append(list, addr.Address)
		owned[addr.Address] = true
	}
	return list, owned, nil
}
