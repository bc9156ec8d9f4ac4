package electrum

import (
	"context"
	"encoding/json"
)

// dispatchNotification handles an unsolicited server push. Each case is run
// in its own goroutine (see readLoop) so a slow RPC round-trip triggered by
// one notification never blocks reading the next line off the wire.
func (c *Client) dispatchNotification(method string, params json.RawMessage) {
	switch method {
	case "blockchain.headers.subscribe":
		c.handleHeadersNotification(params)
	case "blockchain.scripthash.subscribe":
		c.handleScripthashNotification(params)
	}
}

func (c *Client) handleHeadersNotification(params json.RawMessage) {
	var items []HeaderNotification
	if err := json.Unmarshal(params, &items); err != nil || len(items) == 0 {
		return
	}
	height := items[len(items)-1].Height
	c.tip.Store(height)
	c.pub.blockHeight.publish(uint32(height))
}

func (c *Client) handleScripthashNotification(params json.RawMessage) {
	var items []string
	if err := json.Unmarshal(params, &items); err != nil || len(items) == 0 {
		return
	}
	scripthash := items[0]

	c.subMu.Lock()
	address, ok := c.addressOf[scripthash]
	c.subMu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()

	history, err := c.GetHistory(ctx, scripthash)
	if err != nil {
		return
	}
	balance, err := c.GetBalance(ctx, scripthash)
	if err != nil {
		return
	}

	c.pub.addressStatus.publish(AddressStatus{Address: address, HasHistory: len(history) > 0})
	c.pub.balanceUpdate.publish(BalanceUpdate{
		Address:         address,
		ConfirmedSats:   balance.Confirmed,
		UnconfirmedSats: balance.Unconfirmed,
	})

	c.subMu.Lock()
	seen := c.knownTxids[address]
	if seen == nil {
		seen = make(map[string]bool)
		c.knownTxids[address] = seen
	}
	var fresh []HistoryEntry
	for _, entry := range history {
		if !seen[entry.TxHash] {
			seen[entry.TxHash] = true
			fresh = append(fresh, entry)
		}
	}
	c.subMu.Unlock()

	tip := c.tip.Load()
	for _, entry := range fresh {
		upd := TransactionUpdate{Txid: entry.TxHash}
		if entry.Height > 0 {
			h := entry.Height
			upd.BlockHeight = &h
			upd.Confirmations = tip - h + 1
		}
		c.pub.transactionUpd.publish(upd)
	}
}
