package txadapter

// subscribeStreams wires the adapter to the Electrum client's tip-height and
// address-status publishers: a new block or an owned address touching history
// invalidates the index and notifies subscribers so they know to re-page.
func (a *Adapter) subscribeStreams() {
	heights, unsubBlock := a.client.SubscribeBlockHeight()
	statuses, unsubAddr := a.client.SubscribeAddressStatus()
	a.unsubBlock = unsubBlock
	a.unsubAddr = unsubAddr

	go func() {
		for h := range heights {
			a.tip.Store(int64(h))
			a.Invalidate()
			a.pub.lastBlock.publish(LastBlockUpdate{WalletID: a.walletID, Height: h})
		}
	}()

	go func() {
		for status := range statuses {
			if !status.HasHistory {
				continue
			}
			_, owned, err := a.ownedAddresses()
			if err != nil {
				continue
			}
			if owned[status.Address] {
				a.Invalidate()
				a.pub.items.publish(ItemsUpdate{WalletID: a.walletID})
			}
		}
	}()
}
