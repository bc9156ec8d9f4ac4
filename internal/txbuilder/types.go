// Package txbuilder assembles and signs P2WPKH spending transactions:
// greedy UTXO selection, BIP141 vbyte/fee estimation, BIP143 sighash
// computation, and witness/serialization.
package txbuilder

import (
	"errors"

	"github.com/nimbuswallet/core/internal/codec"
)

// DustLimit is the minimum change amount (in satoshis) worth creating an
// output for; anything smaller is folded into the fee instead.
const DustLimit = 546

// SighashAll is the only sighash type this pipeline produces.
const SighashAll uint32 = 1

var (
	// ErrInsufficientFunds indicates the available UTXOs (plus fee) can't
	// cover the requested spend amount.
	ErrInsufficientFunds = errors.New("txbuilder: insufficient funds")
	// ErrNoUTXOs indicates an empty UTXO set was supplied.
	ErrNoUTXOs = errors.New("txbuilder: no UTXOs available")
)

// UTXO is a spendable P2WPKH output plus the private key that controls it.
type UTXO struct {
	Txid         [32]byte // display (byte-reversed) order, as in DecodedTx
	Vout         uint32
	Value        int64
	ScriptPubKey []byte // the witness v0 scriptPubKey this output pays to
	PrivateKey   *codec.PrivateKey
}

// Outpoint identifies one spent UTXO by its display-order txid and output
// index, so callers can update their own UTXO bookkeeping after a
// successful BuildSpend without re-deriving the selection.
type Outpoint struct {
	Txid [32]byte
	Vout uint32
}

// SpendResult is the outcome of a successful BuildSpend.
type SpendResult struct {
	RawHex         string
	VBytes         int
	FeeSats        int64
	ChangeSats     int64
	SpentOutpoints []Outpoint
}
