package walletrepo

import "errors"

var (
	ErrWalletNotFound      = errors.New("walletrepo: wallet not found")
	ErrWalletExists        = errors.New("walletrepo: wallet with that name already exists")
	ErrInvalidWalletName   = errors.New("walletrepo: wallet name must be 1-64 alphanumeric characters or underscores")
	ErrAddressNotFound     = errors.New("walletrepo: address not found")
	ErrWatchOnly           = errors.New("walletrepo: operation requires key material, but this wallet is watch-only")
	ErrNoActiveWallet      = errors.New("walletrepo: no active wallet")
	ErrGapLimitAborted     = errors.New("walletrepo: gap-limit expansion aborted by a history lookup failure")
)
