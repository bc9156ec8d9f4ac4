package electrum

import "context"

// HasHistory implements walletrepo.HistoryChecker: it reports whether an
// address has ever appeared in a transaction, by asking the server for its
// history directly (no subscription or cache involved).
func (c *Client) HasHistory(address string) (bool, error) {
	scripthash, err := ScriptHashForAddress(address)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	history, err := c.GetHistory(ctx, scripthash)
	if err != nil {
		return false, err
	}
	return len(history) > 0, nil
}
