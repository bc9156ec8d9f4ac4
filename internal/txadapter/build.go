package txadapter

import (
	"context"
	"encoding/hex"

	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/txmodel"
	"github.com/nimbuswallet/core/internal/walletrepo"
)

// decodeCached decodes txid's raw transaction, serving from decodeCache
// when possible.
func (a *Adapter) decodeCached(ctx context.Context, txid string) (*txmodel.DecodedTx, error) {
	if tx, ok := a.decodeCache.Get(txid); ok {
		return tx, nil
	}
	raw, err := a.client.GetTransactionHex(ctx, txid)
	if err != nil {
		return nil, err
	}
	tx, err := txmodel.Decode(raw, a.network)
	if err != nil {
		return nil, err
	}
	a.decodeCache.Put(txid, tx)
	return tx, nil
}

// buildModel resolves txid into its fully-computed TransactionModel: it
// decodes the transaction and every parent output it spends, derives the
// wallet's net effect and counterparty, and resolves its confirmation
// status and timestamp. Failures upserting the resolved metadata are
// logged and swallowed — the returned model is still authoritative for
// this call.
func (a *Adapter) buildModel(ctx context.Context, txid string, owned map[string]bool, tipHeight int64, knownHeight *int64) (TransactionModel, error) {
	tx, err := a.decodeCached(ctx, txid)
	if err != nil {
		return TransactionModel{}, err
	}

	var inTotal, outTotal, toOwned, fromOwned int64
	var firstExternalOut, firstOwnedOut string

	for _, out := range tx.Outputs {
		outTotal += out.Value
		switch {
		case out.Address != "" && owned[out.Address]:
			toOwned += out.Value
			if firstOwnedOut == "" {
				firstOwnedOut = out.Address
			}
		case out.Address != "" && firstExternalOut == "":
			firstExternalOut = out.Address
		}
	}

	for _, in := range tx.Inputs {
		parentTxid := hex.EncodeToString(in.PrevTxid[:])
		parent, err := a.decodeCached(ctx, parentTxid)
		if err != nil {
			a.logError("txadapter: decode parent %s for %s: %v", parentTxid, txid, err)
			continue
		}
		if int(in.Vout) >= len(parent.Outputs) {
			continue
		}
		parentOut := parent.Outputs[in.Vout]
		inTotal += parentOut.Value
		if parentOut.Address != "" && owned[parentOut.Address] {
			fromOwned += parentOut.Value
		}
	}

	feeSats := inTotal - outTotal
	if feeSats < 0 {
		feeSats = 0
	}
	netSats := toOwned - fromOwned

	txType := Received
	if netSats < 0 {
		txType = Sent
	}

	counterparty := firstOwnedOut
	if txType == Sent {
		counterparty = firstExternalOut
	}
	if counterparty == "" {
		if addrs, _, err := a.ownedAddresses(); err == nil && len(addrs) > 0 {
			counterparty = addrs[0]
		}
	}

	confirmations := int64(0)
	if knownHeight != nil {
		confirmations = tipHeight - *knownHeight + 1
		if confirmations < 0 {
			confirmations = 0
		}
	}

	amount := netSats
	if amount < 0 {
		amount = -amount
	}

	model := TransactionModel{
		Txid:          txid,
		AmountSats:    amount,
		FeeSats:       feeSats,
		BlockHeight:   knownHeight,
		Timestamp:     a.resolveTimestamp(ctx, knownHeight),
		Type:          txType,
		Status:        walletrepo.StatusFromConfirmations(confirmations),
		Counterparty:  counterparty,
		Confirmations: confirmations,
	}

	a.upsertMetadata(model)
	return model, nil
}

// resolveTimestamp returns height's block time, preferring the cached
// value and otherwise fetching and parsing the block header. Returns 0
// (unknown) for a mempool (nil height) transaction.
func (a *Adapter) resolveTimestamp(ctx context.Context, height *int64) int64 {
	if height == nil {
		return 0
	}

	a.mu.Lock()
	ts, ok := a.headerTS[*height]
	a.mu.Unlock()
	if ok {
		return ts
	}

	raw, err := a.client.BlockHeader(ctx, *height)
	if err != nil {
		a.logError("txadapter: fetch header at %d: %v", *height, err)
		return 0
	}
	fields, err := electrum.ParseBlockHeader(raw)
	if err != nil {
		a.logError("txadapter: parse header at %d: %v", *height, err)
		return 0
	}

	ts = fields.Timestamp.Unix()
	a.mu.Lock()
	a.headerTS[*height] = ts
	a.mu.Unlock()
	if err := a.persistCaches(); err != nil {
		a.logError("txadapter: persist caches: %v", err)
	}
	return ts
}

// upsertMetadata best-effort persists the resolved model as transaction
// metadata. Failures never propagate: the adapter's in-memory state
// remains the source of truth for the current session.
func (a *Adapter) upsertMetadata(m TransactionModel) {
	direction := walletrepo.DirectionReceived
	if m.Type == Sent {
		direction = walletrepo.DirectionSent
	}
	meta := walletrepo.TxMetadata{
		Txid:         m.Txid,
		AmountSats:   m.AmountSats,
		FeeSats:      m.FeeSats,
		BlockHeight:  m.BlockHeight,
		Timestamp:    m.Timestamp,
		Direction:    direction,
		Status:       m.Status,
		Counterparty: m.Counterparty,
	}
	if err := a.repo.UpsertTxMetadata(a.walletID, meta); err != nil {
		a.logError("txadapter: upsert tx metadata for %s: %v", m.Txid, err)
	}
}
