package txbuilder

import (
	"encoding/hex"

	"github.com/nimbuswallet/core/internal/codec"
	"github.com/nimbuswallet/core/internal/txmodel"
)

const txVersion int32 = 2

// BuildSpend selects UTXOs to cover amountSats plus the estimated fee at
// feeRateSatPerVB, signs every selected P2WPKH input with BIP143+low-S
// ECDSA, and serializes the resulting transaction. Change below DustLimit
// is folded into the fee rather than given its own output.
//
// Selection is greedy: utxos are consumed in the order given until the sum
// covers amount + fee (the fee estimate is recomputed as each input is
// added, since more inputs cost more vbytes).
func BuildSpend(targetAddr string, amountSats int64, feeRateSatPerVB int64, utxos []UTXO, changeAddr string) (*SpendResult, error) {
	if len(utxos) == 0 {
		return nil, ErrNoUTXOs
	}
	if amountSats <= 0 {
		return nil, ErrInsufficientFunds
	}

	targetScript, err := txmodel.ScriptFromAddress(targetAddr)
	if err != nil {
		return nil, err
	}
	changeScript, err := txmodel.ScriptFromAddress(changeAddr)
	if err != nil {
		return nil, err
	}

	selected, total, err := selectUTXOs(utxos, amountSats, feeRateSatPerVB)
	if err != nil {
		return nil, err
	}

	// First pass assuming a change output exists; if the resulting change
	// would be dust, drop the output and recompute without it.
	vbytesWithChange := estimateVBytes(len(selected), 2)
	feeWithChange := int64(vbytesWithChange) * feeRateSatPerVB
	changeSats := total - amountSats - feeWithChange

	var outputs []txOutput
	var vbytes int
	var feeSats int64

	if changeSats >= DustLimit {
		outputs = []txOutput{
			{value: amountSats, scriptPubKey: targetScript},
			{value: changeSats, scriptPubKey: changeScript},
		}
		vbytes = vbytesWithChange
		feeSats = feeWithChange
	} else {
		vbytes = estimateVBytes(len(selected), 1)
		feeSats = total - amountSats
		if feeSats < int64(vbytes)*feeRateSatPerVB {
			return nil, ErrInsufficientFunds
		}
		outputs = []txOutput{
			{value: amountSats, scriptPubKey: targetScript},
		}
		changeSats = 0
	}

	inputs := make([]txInput, len(selected))
	for i, u := range selected {
		inputs[i] = txInput{prevTxidWire: reversed(u.Txid), vout: u.Vout, sequence: 0xfffffffd}
	}

	witnesses := make([][2][]byte, len(selected))
	for i, u := range selected {
		pubKeyHash := codec.Hash160(u.PrivateKey.PubKey().SerializeCompressed())
		scriptCode := p2wpkhScriptCode(pubKeyHash)
		hash := bip143Preimage(txVersion, inputs, outputs, i, scriptCode, u.Value, 0, SighashAll)
		sig := u.PrivateKey.Sign(hash)
		witnesses[i] = [2][]byte{
			append(append([]byte{}, sig...), byte(SighashAll)),
			u.PrivateKey.PubKey().SerializeCompressed(),
		}
	}

	raw := serialize(inputs, outputs, witnesses, 0)

	spent := make([]Outpoint, len(selected))
	for i, u := range selected {
		spent[i] = Outpoint{Txid: u.Txid, Vout: u.Vout}
	}

	return &SpendResult{
		RawHex:         hex.EncodeToString(raw),
		VBytes:         vbytes,
		FeeSats:        feeSats,
		ChangeSats:     changeSats,
		SpentOutpoints: spent,
	}, nil
}

// selectUTXOs walks utxos in order, accumulating until the sum covers
// amount plus the fee estimated for the inputs selected so far.
func selectUTXOs(utxos []UTXO, amountSats, feeRateSatPerVB int64) ([]UTXO, int64, error) {
	var selected []UTXO
	var total int64
	for _, u := range utxos {
		selected = append(selected, u)
		total += u.Value

		vbytes := estimateVBytes(len(selected), 2)
		fee := int64(vbytes) * feeRateSatPerVB
		if total >= amountSats+fee {
			return selected, total, nil
		}
	}
	return nil, 0, ErrInsufficientFunds
}

func reversed(in [32]byte) [32]byte {
	var out [32]byte
	for i := range in {
		out[i] = in[31-i]
	}
	return out
}

// serialize builds the final wire-format transaction: version, marker/flag,
// inputs (with empty scriptSig — P2WPKH spends carry their signature in the
// witness), outputs, witness stacks, locktime.
func serialize(inputs []txInput, outputs []txOutput, witnesses [][2][]byte, locktime uint32) []byte {
	var buf []byte
	buf = appendU32LE(buf, uint32(txVersion))
	buf = append(buf, 0x00, 0x01) // segwit marker, flag

	buf = txmodel.WriteVarInt(buf, uint64(len(inputs)))
	for _, in := range inputs {
		buf = append(buf, in.prevTxidWire[:]...)
		buf = appendU32LE(buf, in.vout)
		buf = txmodel.WriteVarInt(buf, 0) // empty scriptSig
		buf = appendU32LE(buf, in.sequence)
	}

	buf = txmodel.WriteVarInt(buf, uint64(len(outputs)))
	for _, out := range outputs {
		buf = appendU64LE(buf, uint64(out.value))
		buf = txmodel.WriteVarInt(buf, uint64(len(out.scriptPubKey)))
		buf = append(buf, out.scriptPubKey...)
	}

	for _, w := range witnesses {
		buf = txmodel.WriteVarInt(buf, 2) // sig, pubkey
		buf = txmodel.WriteVarInt(buf, uint64(len(w[0])))
		buf = append(buf, w[0]...)
		buf = txmodel.WriteVarInt(buf, uint64(len(w[1])))
		buf = append(buf, w[1]...)
	}

	buf = appendU32LE(buf, locktime)
	return buf
}
