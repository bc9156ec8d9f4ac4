package txadapter

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// fakeElectrum is a deterministic, in-memory ElectrumSource for tests: no
// network I/O, no goroutines of its own beyond the subscription channels
// tests explicitly drive by sending on heights/statuses.
type fakeElectrum struct {
	mu sync.Mutex

	historyByScripthash map[string][]electrum.HistoryEntry
	txHexByTxid         map[string]string
	merkleByTxid         map[string]electrum.Merkle
	headerByHeight      map[int64]string

	historyErr error
	merkleErr  error

	heights   chan uint32
	statuses  chan electrum.AddressStatus
}

func newFakeElectrum() *fakeElectrum {
	return &fakeElectrum{
		historyByScripthash: make(map[string][]electrum.HistoryEntry),
		txHexByTxid:         make(map[string]string),
		merkleByTxid:        make(map[string]electrum.Merkle),
		headerByHeight:      make(map[int64]string),
		heights:             make(chan uint32, 4),
		statuses:            make(chan electrum.AddressStatus, 4),
	}
}

func (f *fakeElectrum) GetHistory(ctx context.Context, scripthash string) ([]electrum.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.historyByScripthash[scripthash], nil
}

func (f *fakeElectrum) GetTransactionHex(ctx context.Context, txid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hex, ok := f.txHexByTxid[txid]
	if !ok {
		return "", fmt.Errorf("fakeElectrum: no tx hex for %s", txid)
	}
	return hex, nil
}

func (f *fakeElectrum) GetMerkle(ctx context.Context, txid string, height int64) (electrum.Merkle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.merkleErr != nil {
		return electrum.Merkle{}, f.merkleErr
	}
	return f.merkleByTxid[txid], nil
}

func (f *fakeElectrum) BlockHeader(ctx context.Context, height int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hex, ok := f.headerByHeight[height]
	if !ok {
		return "", fmt.Errorf("fakeElectrum: no header at height %d", height)
	}
	return hex, nil
}

func (f *fakeElectrum) SubscribeBlockHeight() (<-chan uint32, func()) {
	return f.heights, func() {}
}

func (f *fakeElectrum) SubscribeAddressStatus() (<-chan electrum.AddressStatus, func()) {
	return f.statuses, func() {}
}

// fakeWalletSource is an in-memory WalletSource.
type fakeWalletSource struct {
	mu        sync.Mutex
	addresses []walletrepo.Address
	upserted  map[string]walletrepo.TxMetadata
	upsertErr error
}

func newFakeWalletSource(addresses ...string) *fakeWalletSource {
	ws := &fakeWalletSource{upserted: make(map[string]walletrepo.TxMetadata)}
	for _, a := range addresses {
		ws.addresses = append(ws.addresses, walletrepo.Address{Address: a})
	}
	return ws
}

func (f *fakeWalletSource) Addresses(walletID string, isChange *bool) ([]walletrepo.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]walletrepo.Address(nil), f.addresses...), nil
}

func (f *fakeWalletSource) UpsertTxMetadata(walletID string, meta walletrepo.TxMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted[meta.Txid] = meta
	return nil
}

func newTestAdapter(t *testing.T, client ElectrumSource, repo WalletSource) *Adapter {
	t.Helper()
	return New("wallet-1", 0, client, repo, t.TempDir(), nil)
}
