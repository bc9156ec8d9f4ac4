package txadapter

import (
	"context"

	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// ElectrumSource is the subset of electrum.Client the adapter depends on.
// Declared as an interface so tests can substitute a fake server.
type ElectrumSource interface {
	GetHistory(ctx context.Context, scripthash string) ([]electrum.HistoryEntry, error)
	GetTransactionHex(ctx context.Context, txid string) (string, error)
	GetMerkle(ctx context.Context, txid string, height int64) (electrum.Merkle, error)
	BlockHeader(ctx context.Context, height int64) (string, error)
	SubscribeBlockHeight() (<-chan uint32, func())
	SubscribeAddressStatus() (<-chan electrum.AddressStatus, func())
}

// WalletSource is the subset of walletrepo.Repository the adapter depends
// on: the owned address set and the place to upsert resolved metadata.
type WalletSource interface {
	Addresses(walletID string, isChange *bool) ([]walletrepo.Address, error)
	UpsertTxMetadata(walletID string, meta walletrepo.TxMetadata) error
}
