// Package txadapter presents a wallet's transaction history as a stable,
// paginated, reorg-aware, incrementally-updated stream of TransactionModel
// values. It owns an in-memory txid index (rebuilt from the Electrum
// client's history calls, persisted to disk for warm starts) and the
// intra-block position refinement needed to order transactions that share
// a block.
package txadapter

import (
	"fmt"

	"github.com/nimbuswallet/core/internal/walletrepo"
)

// TxType distinguishes money flowing into vs. out of the wallet.
type TxType string

const (
	Received TxType = "received"
	Sent     TxType = "sent"
)

// TransactionModel is the adapter's fully-resolved, UI-facing view of one
// transaction: its net effect on the wallet, fee, counterparty, and status.
type TransactionModel struct {
	Txid          string
	AmountSats    int64 // absolute value
	FeeSats       int64
	BlockHeight   *int64
	Timestamp     int64 // unix seconds; 0 if unknown
	Type          TxType
	Status        walletrepo.TxStatus
	Counterparty  string
	Confirmations int64
}

// Cursor is the opaque pagination token: "{height_or_0}|{txid}".
type Cursor string

func encodeCursor(height int64, txid string) Cursor {
	return Cursor(fmt.Sprintf("%d|%s", height, txid))
}

// ItemsUpdate is a progressive batch of page results, emitted as each
// concurrency-bounded chunk of a page finishes decoding.
type ItemsUpdate struct {
	WalletID string
	Items    []TransactionModel
}

// LastBlockUpdate is emitted whenever the tracked tip height changes.
type LastBlockUpdate struct {
	WalletID string
	Height   uint32
}
