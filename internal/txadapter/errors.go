package txadapter

import "errors"

// ErrNoWalletAddresses is returned when a wallet has no addresses yet to
// build an index from.
var ErrNoWalletAddresses = errors.New("txadapter: wallet has no addresses")
