package electrum

import "context"

// SubscribeAddress computes address's scripthash, caches the
// address<->scripthash mapping, and subscribes to it on the server. Activity
// is reported asynchronously via SubscribeAddressStatus,
// SubscribeBalanceUpdates, and SubscribeTransactionUpdates.
func (c *Client) SubscribeAddress(ctx context.Context, address string) error {
	scripthash, err := ScriptHashForAddress(address)
	if err != nil {
		return err
	}

	c.subMu.Lock()
	c.scripthashOf[address] = scripthash
	c.addressOf[scripthash] = address
	if _, ok := c.knownTxids[address]; !ok {
		c.knownTxids[address] = make(map[string]bool)
	}
	c.subMu.Unlock()

	_, err = c.Call(ctx, "blockchain.scripthash.subscribe", []interface{}{scripthash})
	return err
}
