package usecases

import (
	"github.com/nimbuswallet/core/internal/txadapter"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// CreateWalletRequest names the new wallet; type and derivation path
// follow the service's configured network.
type CreateWalletRequest struct {
	Name string
}

// CreateWalletResult returns the new wallet plus its recovery phrase, the
// one moment the mnemonic is handed to a caller in plaintext.
type CreateWalletResult struct {
	Wallet   walletrepo.Wallet
	Mnemonic string
}

// ImportWalletRequest restores a wallet from an existing recovery phrase.
// Phrase is accepted as pasted by the user, including numbered-list or
// bullet formatting; it is normalized before validation.
type ImportWalletRequest struct {
	Name   string
	Phrase string
}

// ImportWatchOnlyRequest registers a wallet with no key material.
type ImportWatchOnlyRequest struct {
	Name    string
	Address string
}

// ReceiveAddressResult is the next unused external address, ready to show
// as a QR code or copy target.
type ReceiveAddressResult struct {
	Address         string
	DerivationIndex uint32
}

// SendBitcoinRequest spends from the active wallet.
type SendBitcoinRequest struct {
	ToAddress  string
	AmountSats int64
	// FeeRateSatPerVB overrides the Electrum fee estimate when positive;
	// callers normally leave this at 0 to let the service ask the server.
	FeeRateSatPerVB int64
}

// SendBitcoinResult is the outcome of a successful broadcast.
type SendBitcoinResult struct {
	Txid       string
	FeeSats    int64
	ChangeSats int64
	VBytes     int
}

// TransactionPage is one page of a wallet's transaction history, in the
// adapter's total order.
type TransactionPage struct {
	Items      []txadapter.TransactionModel
	NextCursor txadapter.Cursor
}
