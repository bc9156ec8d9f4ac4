package usecases

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mrz1836/go-sanitize"

	"github.com/nimbuswallet/core/internal/txbuilder"
	"github.com/nimbuswallet/core/internal/txmodel"
	"github.com/nimbuswallet/core/internal/walletrepo"
	walleterr "github.com/nimbuswallet/core/pkg/errors"
)

// satsPerBTC converts Electrum's blockchain.estimatefee answer (BTC per
// kilobyte) to satoshis per kilobyte before the per-vbyte division below.
const satsPerBTC = 100_000_000

// SendBitcoin builds, signs, and broadcasts a P2WPKH spend from the active
// wallet. It validates amount against the confirmed balance before
// touching Electrum beyond a fee estimate, per the insufficient-funds
// propagation policy: a rejected send never reaches broadcast.
func (s *Service) SendBitcoin(ctx context.Context, req SendBitcoinRequest) (*SendBitcoinResult, error) {
	toAddr := sanitize.BitcoinAddress(strings.TrimSpace(req.ToAddress))
	if toAddr == "" {
		return nil, walleterr.New(walleterr.InvalidInput, "recipient address is required")
	}
	if _, err := txmodel.ScriptFromAddress(toAddr); err != nil {
		return nil, walleterr.WrapKind(walleterr.InvalidInput, err, "invalid recipient address")
	}
	if req.AmountSats <= 0 {
		return nil, walleterr.New(walleterr.InvalidInput, "amount must be positive")
	}

	wallet, err := s.repo.GetActive()
	if err != nil {
		return nil, mapWalletRepoErr(err, "send bitcoin")
	}
	if wallet.Type == walletrepo.WatchOnly {
		return nil, walleterr.New(walleterr.InvalidInput, "wallet is watch-only and cannot send")
	}

	tip := s.adapterFor(wallet.ID).TipHeight()
	confirmed, err := s.repo.ConfirmedBalance(wallet.ID, tip)
	if err != nil {
		return nil, mapWalletRepoErr(err, "send bitcoin")
	}
	if req.AmountSats > confirmed {
		return nil, walleterr.New(walleterr.InsufficientFunds, "amount exceeds confirmed balance")
	}

	feeRate := req.FeeRateSatPerVB
	if feeRate <= 0 {
		btcPerKB, feeErr := s.client.EstimateFee(ctx, 6)
		if feeErr != nil {
			return nil, walleterr.WrapKind(walleterr.NetworkUnavailable, feeErr, "estimate fee")
		}
		feeRate = satsPerVByte(btcPerKB)
	}

	spendable, changeAddr, err := s.spendableUTXOs(wallet.ID, tip)
	if err != nil {
		return nil, err
	}

	result, err := txbuilder.BuildSpend(toAddr, req.AmountSats, feeRate, spendable, changeAddr)
	if err != nil {
		switch err {
		case txbuilder.ErrInsufficientFunds, txbuilder.ErrNoUTXOs:
			return nil, walleterr.WrapKind(walleterr.InsufficientFunds, err, "send bitcoin")
		default:
			return nil, walleterr.Wrap(err, "send bitcoin")
		}
	}

	txid, err := s.client.Broadcast(ctx, result.RawHex)
	if err != nil {
		return nil, walleterr.WithDetails(
			walleterr.WrapKind(walleterr.ServerError, err, "broadcast transaction"),
			map[string]string{"rawTx": result.RawHex},
		)
	}

	for _, sp := range result.SpentOutpoints {
		if _, markErr := s.repo.MarkSpent(wallet.ID, hex.EncodeToString(sp.Txid[:]), sp.Vout, txid); markErr != nil {
			s.logError("send bitcoin: mark spent %s:%d: %v", hex.EncodeToString(sp.Txid[:]), sp.Vout, markErr)
		}
	}
	s.adapterFor(wallet.ID).Invalidate()

	return &SendBitcoinResult{
		Txid:       txid,
		FeeSats:    result.FeeSats,
		ChangeSats: result.ChangeSats,
		VBytes:     result.VBytes,
	}, nil
}

// spendableUTXOs gathers the wallet's confirmed, unspent UTXOs as
// txbuilder inputs (each paired with its controlling private key) plus the
// wallet's change address.
func (s *Service) spendableUTXOs(walletID string, tipHeight int64) ([]txbuilder.UTXO, string, error) {
	utxos, err := s.repo.UTXOs(walletID)
	if err != nil {
		return nil, "", mapWalletRepoErr(err, "send bitcoin")
	}

	addrs, err := s.repo.Addresses(walletID, nil)
	if err != nil {
		return nil, "", mapWalletRepoErr(err, "send bitcoin")
	}
	byScript, err := indexAddressesByScript(addrs)
	if err != nil {
		return nil, "", walleterr.Wrap(err, "send bitcoin")
	}

	changeAddr, err := s.repo.ChangeAddress(walletID)
	if err != nil {
		return nil, "", mapWalletRepoErr(err, "send bitcoin")
	}

	spendable := make([]txbuilder.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.IsSpent || u.Confirmations(tipHeight) <= 0 {
			continue
		}
		addr, ok := byScript[string(u.ScriptPubKey)]
		if !ok {
			// Not derivable from this wallet's known address set; skip
			// rather than fail the whole send over one stray entry.
			continue
		}
		key, keyErr := s.repo.SigningKey(walletID, addr.IsChange, addr.DerivationIndex)
		if keyErr != nil {
			return nil, "", mapWalletRepoErr(keyErr, "send bitcoin")
		}
		txid, txidErr := txidToBytes(u.Txid)
		if txidErr != nil {
			return nil, "", walleterr.WrapKind(walleterr.PersistenceFailure, txidErr, "send bitcoin")
		}
		spendable = append(spendable, txbuilder.UTXO{
			Txid:         txid,
			Vout:         u.Vout,
			Value:        u.ValueSats,
			ScriptPubKey: u.ScriptPubKey,
			PrivateKey:   key,
		})
	}
	return spendable, changeAddr.Address, nil
}

// indexAddressesByScript keys a wallet's addresses by their scriptPubKey,
// so a UTXO's raw scriptPubKey can be matched back to the derivation index
// (and branch) that controls it.
func indexAddressesByScript(addrs []walletrepo.Address) (map[string]walletrepo.Address, error) {
	idx := make(map[string]walletrepo.Address, len(addrs))
	for _, a := range addrs {
		script, err := txmodel.ScriptFromAddress(a.Address)
		if err != nil {
			return nil, fmt.Errorf("usecases: script for address %s: %w", a.Address, err)
		}
		idx[string(script)] = a
	}
	return idx, nil
}

// txidToBytes parses a display-order txid hex string into the fixed-size
// form txbuilder.UTXO expects.
func txidToBytes(txidHex string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(txidHex)
	if err != nil {
		return out, fmt.Errorf("usecases: parse txid %q: %w", txidHex, err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("usecases: txid %q is %d bytes, want 32", txidHex, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// satsPerVByte converts Electrum's BTC-per-kilobyte fee estimate to
// satoshis per virtual byte, flooring at 1 so a server returning a
// near-zero (but valid) estimate never produces a zero-fee transaction.
func satsPerVByte(btcPerKB float64) int64 {
	if btcPerKB <= 0 {
		return 1
	}
	rate := int64(btcPerKB * satsPerBTC / 1000)
	if rate < 1 {
		return 1
	}
	return rate
}

// logError records a non-fatal failure without propagating it.
func (s *Service) logError(format string, args ...any) {
	if s.logger != nil {
		s.logger.Error(format, args...)
	}
}
