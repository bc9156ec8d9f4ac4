package walletrepo

// SetUTXOs replaces a wallet's tracked UTXO set, as observed from an
// Electrum listunspent scan. Spent-but-recently-observed entries are the
// caller's responsibility to retain in the slice it passes in.
func (r *Repository) SetUTXOs(walletID string, utxos []UTXO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return ErrWalletNotFound
	}
	rec.UTXOs = append([]UTXO(nil), utxos...)
	return nil
}

// UTXOs returns a wallet's tracked UTXOs, unspent and spent.
func (r *Repository) UTXOs(walletID string) ([]UTXO, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return append([]UTXO(nil), rec.UTXOs...), nil
}

// ConfirmedBalance sums the value of unspent UTXOs with at least one
// confirmation at tipHeight.
func (r *Repository) ConfirmedBalance(walletID string, tipHeight int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	var total int64
	for _, u := range rec.UTXOs {
		if u.IsSpent {
			continue
		}
		if u.Confirmations(tipHeight) > 0 {
			total += u.ValueSats
		}
	}
	return total, nil
}

// MarkSpent marks a tracked UTXO as spent by spentByTxid. Returns false if
// the UTXO was not found.
func (r *Repository) MarkSpent(walletID, txid string, vout uint32, spentByTxid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.wallets[walletID]
	if !ok {
		return false, ErrWalletNotFound
	}
	for i := range rec.UTXOs {
		if rec.UTXOs[i].Txid == txid && rec.UTXOs[i].Vout == vout {
			rec.UTXOs[i].IsSpent = true
			rec.UTXOs[i].SpentByTxid = spentByTxid
			return true, nil
		}
	}
	return false, nil
}
