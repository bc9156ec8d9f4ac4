package walletrepo

// UpsertTxMetadata inserts or replaces a transaction's wallet-facing
// summary, keyed by txid. Called by the transactions adapter as it builds
// or updates TransactionModel values.
func (r *Repository) UpsertTxMetadata(walletID string, meta TxMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return ErrWalletNotFound
	}
	for i := range rec.TxHistory {
		if rec.TxHistory[i].Txid == meta.Txid {
			rec.TxHistory[i] = meta
			return nil
		}
	}
	rec.TxHistory = append(rec.TxHistory, meta)
	return nil
}

// TxHistory returns a wallet's transaction metadata in insertion order;
// callers that need the adapter's total order re-sort it themselves.
func (r *Repository) TxHistory(walletID string) ([]TxMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return append([]TxMetadata(nil), rec.TxHistory...), nil
}
