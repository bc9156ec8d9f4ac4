package walletrepo

import (
	"fmt"

	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/secretstore"
)

// EnsureGapLimit derives and persists external addresses starting from the
// next unknown index until gap consecutive addresses come back with no
// history. On any history-lookup failure it aborts without persisting the
// addresses derived so far this call, so the persisted index never drifts
// ahead of what has actually been confirmed empty.
func (r *Repository) EnsureGapLimit(walletID string, gap int) error {
	l := r.lockFor(walletID)
	l.Lock()
	defer l.Unlock()
	return r.ensureGapLimitLocked(walletID, gap)
}

// ensureGapLimitLocked is EnsureGapLimit's body, callable by other
// operations that already hold the wallet's lock.
func (r *Repository) ensureGapLimitLocked(walletID string, gap int) error {
	r.mu.RLock()
	rec, ok := r.wallets[walletID]
	if !ok {
		r.mu.RUnlock()
		return ErrWalletNotFound
	}
	if rec.Wallet.Type == WatchOnly {
		r.mu.RUnlock()
		return ErrWatchOnly
	}
	walletType := rec.Wallet.Type
	name := rec.Wallet.Name
	startIndex := uint32(len(rec.External))
	r.mu.RUnlock()

	seed, err := r.seedFor(name)
	if err != nil {
		return err
	}
	defer secretstore.ZeroBytes(seed)

	var pending []Address
	consecutiveEmpty := 0
	for index := startIndex; consecutiveEmpty < gap; index++ {
		key, err := bip84.Derive(seed, networkFor(walletType), 0, bip84.ExternalChain, index)
		if err != nil {
			return fmt.Errorf("walletrepo: derive address %d: %w", index, err)
		}
		hasHistory, err := r.history.HasHistory(key.Address)
		if err != nil {
			// Abort without advancing: pending is discarded, rec.External
			// is untouched.
			return fmt.Errorf("%w: %v", ErrGapLimitAborted, err)
		}
		pending = append(pending, Address{
			Address:         key.Address,
			DerivationIndex: index,
			IsChange:        false,
			Type:            "p2wpkh",
			IsUsed:          hasHistory,
		})
		if hasHistory {
			consecutiveEmpty = 0
		} else {
			consecutiveEmpty++
		}
	}

	r.mu.Lock()
	rec.External = append(rec.External, pending...)
	r.mu.Unlock()
	return nil
}

// NextReceiveAddress ensures the gap limit is satisfied, then returns the
// first external address with no history, deriving and persisting a new
// one if every known address has been used.
func (r *Repository) NextReceiveAddress(walletID string, gap int) (*Address, error) {
	l := r.lockFor(walletID)
	l.Lock()
	defer l.Unlock()

	if err := r.ensureGapLimitLocked(walletID, gap); err != nil {
		return nil, err
	}

	r.mu.RLock()
	rec, ok := r.wallets[walletID]
	if !ok {
		r.mu.RUnlock()
		return nil, ErrWalletNotFound
	}
	walletType := rec.Wallet.Type
	name := rec.Wallet.Name
	candidates := append([]Address(nil), rec.External...)
	r.mu.RUnlock()

	for i := range candidates {
		hasHistory, err := r.history.HasHistory(candidates[i].Address)
		if err != nil {
			return nil, fmt.Errorf("walletrepo: check address history: %w", err)
		}
		if !hasHistory {
			addr := candidates[i]
			return &addr, nil
		}
	}

	// Every known address has history despite the gap-limit scan above
	// (e.g. gap=0, or a concurrent wallet with no buffer yet); derive one
	// more and persist it.
	seed, err := r.seedFor(name)
	if err != nil {
		return nil, err
	}
	defer secretstore.ZeroBytes(seed)
	nextIndex := uint32(len(candidates))
	key, err := bip84.Derive(seed, networkFor(walletType), 0, bip84.ExternalChain, nextIndex)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive next receive address: %w", err)
	}
	addr := Address{Address: key.Address, DerivationIndex: nextIndex, IsChange: false, Type: "p2wpkh"}

	r.mu.Lock()
	rec.External = append(rec.External, addr)
	r.mu.Unlock()

	return &addr, nil
}

// ChangeAddress ensures change-index-0 exists and returns it. Every
// non-watch-only wallet derives change-0 at creation/import time, so this
// is normally a pure read.
func (r *Repository) ChangeAddress(walletID string) (*Address, error) {
	l := r.lockFor(walletID)
	l.Lock()
	defer l.Unlock()

	r.mu.RLock()
	rec, ok := r.wallets[walletID]
	if !ok {
		r.mu.RUnlock()
		return nil, ErrWalletNotFound
	}
	if rec.Wallet.Type == WatchOnly {
		r.mu.RUnlock()
		return nil, ErrWatchOnly
	}
	if len(rec.Change) > 0 {
		addr := rec.Change[0]
		r.mu.RUnlock()
		return &addr, nil
	}
	walletType := rec.Wallet.Type
	name := rec.Wallet.Name
	r.mu.RUnlock()

	seed, err := r.seedFor(name)
	if err != nil {
		return nil, err
	}
	defer secretstore.ZeroBytes(seed)
	key, err := bip84.Derive(seed, networkFor(walletType), 0, bip84.ChangeChain, 0)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive change address 0: %w", err)
	}
	addr := Address{Address: key.Address, DerivationIndex: 0, IsChange: true, Type: "p2wpkh"}

	r.mu.Lock()
	rec.Change = append(rec.Change, addr)
	r.mu.Unlock()

	return &addr, nil
}
