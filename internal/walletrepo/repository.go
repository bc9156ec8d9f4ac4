package walletrepo

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/mnemonic"
	"github.com/nimbuswallet/core/internal/secretstore"
)

var walletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)

// ValidateWalletName checks a wallet name against the allowed charset.
func ValidateWalletName(name string) error {
	if !walletNameRegex.MatchString(name) {
		return ErrInvalidWalletName
	}
	return nil
}

// HistoryChecker answers whether an address has ever appeared in a
// transaction, the question gap-limit expansion and receive-address
// rotation both hinge on. The Electrum client implements this against
// blockchain.scripthash.get_history; tests use a fake.
type HistoryChecker interface {
	HasHistory(address string) (bool, error)
}

type walletRecord struct {
	Wallet    Wallet
	External  []Address
	Change    []Address
	UTXOs     []UTXO
	TxHistory []TxMetadata
}

// Repository persists wallets/addresses/UTXOs/tx-metadata and owns
// gap-limit address expansion. Mutating operations are serialized per
// wallet (logical single-writer); reads may run concurrently.
type Repository struct {
	dataDir string
	secrets *secretstore.Store
	history HistoryChecker

	mu       sync.RWMutex
	wallets  map[string]*walletRecord
	activeID string

	lockMu      sync.Mutex
	walletLocks map[string]*sync.Mutex
}

// New creates a Repository backed by dataDir for its persisted index file,
// secrets for mnemonic/seed/private-key custody, and history for gap-limit
// and receive-address decisions.
func New(dataDir string, secrets *secretstore.Store, history HistoryChecker) *Repository {
	return &Repository{
		dataDir:     dataDir,
		secrets:     secrets,
		history:     history,
		wallets:     make(map[string]*walletRecord),
		walletLocks: make(map[string]*sync.Mutex),
	}
}

func (r *Repository) lockFor(id string) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	l, ok := r.walletLocks[id]
	if !ok {
		l = &sync.Mutex{}
		r.walletLocks[id] = l
	}
	return l
}

func newWalletID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("walletrepo: generate wallet id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func networkFor(t WalletType) bip84.Network {
	if t == Testnet {
		return bip84.Testnet
	}
	return bip84.Mainnet
}

func basePath(t WalletType) string {
	return fmt.Sprintf("m/84'/%d'/0'", networkFor(t).CoinType())
}

// CreateWallet generates a new BIP39 mnemonic, derives the index-0 external
// and change addresses, stores the mnemonic in the secret store, and marks
// the new wallet active.
func (r *Repository) CreateWallet(name string, walletType WalletType) (*Wallet, error) {
	if walletType == WatchOnly {
		return nil, fmt.Errorf("walletrepo: CreateWallet does not accept WatchOnly, use ImportWatchOnly")
	}
	if err := ValidateWalletName(name); err != nil {
		return nil, err
	}

	phrase, err := mnemonic.Generate(24)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: generate mnemonic: %w", err)
	}
	return r.importWithMnemonic(name, walletType, phrase)
}

// ImportWallet restores a wallet from an existing mnemonic phrase.
func (r *Repository) ImportWallet(name string, walletType WalletType, phrase string) (*Wallet, error) {
	if walletType == WatchOnly {
		return nil, fmt.Errorf("walletrepo: ImportWallet does not accept WatchOnly, use ImportWatchOnly")
	}
	if err := ValidateWalletName(name); err != nil {
		return nil, err
	}
	if err := mnemonic.Validate(phrase); err != nil {
		return nil, err
	}
	return r.importWithMnemonic(name, walletType, phrase)
}

func (r *Repository) importWithMnemonic(name string, walletType WalletType, phrase string) (*Wallet, error) {
	r.mu.Lock()
	for _, rec := range r.wallets {
		if rec.Wallet.Name == name {
			r.mu.Unlock()
			return nil, ErrWalletExists
		}
	}
	r.mu.Unlock()

	id, err := newWalletID()
	if err != nil {
		return nil, err
	}

	seed, err := mnemonic.Seed(phrase, "")
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive seed: %w", err)
	}

	externalKey, err := bip84.Derive(seed, networkFor(walletType), 0, bip84.ExternalChain, 0)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive external address 0: %w", err)
	}
	changeKey, err := bip84.Derive(seed, networkFor(walletType), 0, bip84.ChangeChain, 0)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive change address 0: %w", err)
	}

	if err := r.secrets.Put(mnemonicKey(name), []byte(phrase), true); err != nil {
		return nil, fmt.Errorf("walletrepo: store mnemonic: %w", err)
	}

	w := Wallet{
		ID:        id,
		Name:      name,
		Type:      walletType,
		BasePath:  basePath(walletType),
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	r.mu.Lock()
	for _, rec := range r.wallets {
		rec.Wallet.Active = false
	}
	r.wallets[id] = &walletRecord{
		Wallet: w,
		External: []Address{
			{Address: externalKey.Address, DerivationIndex: 0, IsChange: false, Type: "p2wpkh"},
		},
		Change: []Address{
			{Address: changeKey.Address, DerivationIndex: 0, IsChange: true, Type: "p2wpkh"},
		},
	}
	r.activeID = id
	r.mu.Unlock()

	return &w, nil
}

// ImportWatchOnly registers a wallet with a single externally-supplied
// address and no key material. Send operations on it must fail upstream;
// this repository never attempts to derive or sign for a watch-only entry.
func (r *Repository) ImportWatchOnly(name string, address string) (*Wallet, error) {
	if err := ValidateWalletName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	for _, rec := range r.wallets {
		if rec.Wallet.Name == name {
			r.mu.Unlock()
			return nil, ErrWalletExists
		}
	}
	r.mu.Unlock()

	id, err := newWalletID()
	if err != nil {
		return nil, err
	}

	w := Wallet{
		ID:        id,
		Name:      name,
		Type:      WatchOnly,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	r.mu.Lock()
	for _, rec := range r.wallets {
		rec.Wallet.Active = false
	}
	r.wallets[id] = &walletRecord{
		Wallet: w,
		External: []Address{
			{Address: address, DerivationIndex: 0, IsChange: false, Type: "watch"},
		},
	}
	r.activeID = id
	r.mu.Unlock()

	return &w, nil
}

// ListWallets returns a summary of every wallet, ordered by creation time.
func (r *Repository) ListWallets() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.wallets))
	for _, rec := range r.wallets {
		out = append(out, Summary{
			ID:        rec.Wallet.ID,
			Name:      rec.Wallet.Name,
			Type:      rec.Wallet.Type,
			CreatedAt: rec.Wallet.CreatedAt,
			Active:    rec.Wallet.Active,
		})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// GetActive returns the wallet currently marked active.
func (r *Repository) GetActive() (*Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[r.activeID]
	if !ok {
		return nil, ErrNoActiveWallet
	}
	w := rec.Wallet
	return &w, nil
}

// SetActive marks the wallet with id active and every other wallet
// inactive.
func (r *Repository) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[id]; !ok {
		return ErrWalletNotFound
	}
	for walletID, rec := range r.wallets {
		rec.Wallet.Active = walletID == id
	}
	r.activeID = id
	return nil
}

// Delete removes a wallet and its stored mnemonic. Deleting the active
// wallet clears the active pointer.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	rec, ok := r.wallets[id]
	if !ok {
		r.mu.Unlock()
		return ErrWalletNotFound
	}
	delete(r.wallets, id)
	if r.activeID == id {
		r.activeID = ""
	}
	r.mu.Unlock()

	if rec.Wallet.Type != WatchOnly {
		if err := r.secrets.Delete(mnemonicKey(rec.Wallet.Name)); err != nil && err != secretstore.ErrNotFound {
			return fmt.Errorf("walletrepo: delete mnemonic: %w", err)
		}
	}
	return nil
}

// Addresses returns a wallet's addresses sorted by derivation index.
// isChange nil returns both branches (external first, then change).
func (r *Repository) Addresses(walletID string, isChange *bool) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	switch {
	case isChange == nil:
		out := make([]Address, 0, len(rec.External)+len(rec.Change))
		out = append(out, rec.External...)
		out = append(out, rec.Change...)
		return out, nil
	case *isChange:
		return append([]Address(nil), rec.Change...), nil
	default:
		return append([]Address(nil), rec.External...), nil
	}
}
