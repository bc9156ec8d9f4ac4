// Package usecases exposes the wallet core's stable, UI-facing API: a thin
// façade over the wallet repository, the Electrum client, and the
// transactions adapter. It owns no persistent state of its own and performs
// no derivation or signing directly — it wires the pieces that do.
package usecases

import (
	"context"

	"github.com/nimbuswallet/core/internal/codec"
	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/txadapter"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// WalletRepo is the subset of *walletrepo.Repository the façade depends on.
// Declared as an interface so service-level tests can substitute a fake
// without standing up real secret storage.
type WalletRepo interface {
	txadapter.WalletSource

	CreateWallet(name string, walletType walletrepo.WalletType) (*walletrepo.Wallet, error)
	ImportWallet(name string, walletType walletrepo.WalletType, phrase string) (*walletrepo.Wallet, error)
	ImportWatchOnly(name string, address string) (*walletrepo.Wallet, error)
	ListWallets() []walletrepo.Summary
	GetActive() (*walletrepo.Wallet, error)
	SetActive(id string) error
	Delete(id string) error
	EnsureGapLimit(walletID string, gap int) error
	NextReceiveAddress(walletID string, gap int) (*walletrepo.Address, error)
	ChangeAddress(walletID string) (*walletrepo.Address, error)
	SetUTXOs(walletID string, utxos []walletrepo.UTXO) error
	UTXOs(walletID string) ([]walletrepo.UTXO, error)
	ConfirmedBalance(walletID string, tipHeight int64) (int64, error)
	MarkSpent(walletID, txid string, vout uint32, spentByTxid string) (bool, error)
	SigningKey(walletID string, isChange bool, index uint32) (*codec.PrivateKey, error)
	RevealMnemonic(walletID string) (string, error)
	TxHistory(walletID string) ([]walletrepo.TxMetadata, error)
}

// ElectrumGateway is the subset of *electrum.Client the façade depends on
// directly, beyond what the transactions adapter already wraps.
type ElectrumGateway interface {
	txadapter.ElectrumSource

	HasHistory(address string) (bool, error)
	ListUnspent(ctx context.Context, scripthash string) ([]electrum.UnspentEntry, error)
	EstimateFee(ctx context.Context, blocks int) (float64, error)
	Broadcast(ctx context.Context, rawTxHex string) (string, error)
}
