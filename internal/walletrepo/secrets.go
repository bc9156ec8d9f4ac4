package walletrepo

import (
	"fmt"

	"github.com/nimbuswallet/core/internal/bip84"
	"github.com/nimbuswallet/core/internal/codec"
	"github.com/nimbuswallet/core/internal/mnemonic"
	"github.com/nimbuswallet/core/internal/secretstore"
)

const walletSeedPrefix = "wallet_seed"

// mnemonicKey is the secret-store key a wallet's recovery phrase is stored
// under, per the "<wallet_seed_prefix>_<wallet_name>" convention.
func mnemonicKey(walletName string) string {
	return fmt.Sprintf("%s_%s", walletSeedPrefix, walletName)
}

// privKeyCacheKey is the secret-store key a derived signing key is cached
// under, per the "wallet_<name>_priv_<index>" convention. Change-branch
// keys are disambiguated with a "c" suffix on the index.
func privKeyCacheKey(walletName string, isChange bool, index uint32) string {
	if isChange {
		return fmt.Sprintf("wallet_%s_priv_%dc", walletName, index)
	}
	return fmt.Sprintf("wallet_%s_priv_%d", walletName, index)
}

// seedFor reconstructs a wallet's BIP39 seed from its stored mnemonic. The
// mnemonic never leaves the secret store except transiently, for this
// derivation.
func (r *Repository) seedFor(walletName string) ([]byte, error) {
	phraseBytes, err := r.secrets.Get(mnemonicKey(walletName))
	if err != nil {
		return nil, fmt.Errorf("walletrepo: load mnemonic: %w", err)
	}
	return mnemonic.Seed(string(phraseBytes), "")
}

// RevealMnemonic returns a wallet's recovery phrase in plaintext. Callers
// are expected to show it to the user at most once per need (creation,
// an explicit "view backup phrase" action) rather than caching it.
func (r *Repository) RevealMnemonic(walletID string) (string, error) {
	r.mu.RLock()
	rec, ok := r.wallets[walletID]
	if !ok {
		r.mu.RUnlock()
		return "", ErrWalletNotFound
	}
	if rec.Wallet.Type == WatchOnly {
		r.mu.RUnlock()
		return "", ErrWatchOnly
	}
	name := rec.Wallet.Name
	r.mu.RUnlock()

	phraseBytes, err := r.secrets.Get(mnemonicKey(name))
	if err != nil {
		return "", fmt.Errorf("walletrepo: load mnemonic: %w", err)
	}
	return string(phraseBytes), nil
}

// SigningKey returns the private key controlling the address at the given
// branch/index, deriving and caching it in the secret store (behind a
// presence gate) on first use.
func (r *Repository) SigningKey(walletID string, isChange bool, index uint32) (*codec.PrivateKey, error) {
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
	name := rec.Wallet.Name
	walletType := rec.Wallet.Type
	r.mu.RUnlock()

	cacheKey := privKeyCacheKey(name, isChange, index)
	if cached, err := r.secrets.Get(cacheKey); err == nil {
		return codec.ParsePrivateKey(cached)
	}

	seed, err := r.seedFor(name)
	if err != nil {
		return nil, err
	}
	defer secretstore.ZeroBytes(seed)
	chain := bip84.ExternalChain
	if isChange {
		chain = bip84.ChangeChain
	}
	key, err := bip84.Derive(seed, networkFor(walletType), 0, chain, index)
	if err != nil {
		return nil, fmt.Errorf("walletrepo: derive signing key: %w", err)
	}
	priv, err := key.Extended.PrivateKey()
	if err != nil {
		return nil, err
	}

	if err := r.secrets.Put(cacheKey, priv.Bytes(), true); err != nil {
		return nil, fmt.Errorf("walletrepo: cache signing key: %w", err)
	}
	return priv, nil
}
