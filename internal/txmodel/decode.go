// Package txmodel decodes raw Bitcoin transaction hex into a structured
// form and derives display addresses from scriptPubKeys, per the script
// templates this wallet recognizes (P2WPKH, P2TR, P2PKH, P2SH).
package txmodel

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/nimbuswallet/core/internal/bip84"
)

// Input is one transaction input, with its previous txid in display
// (byte-reversed) order.
type Input struct {
	PrevTxid  [32]byte
	Vout      uint32
	ScriptSig []byte
	Sequence  uint32
}

// Output is one transaction output; Address is empty when the scriptPubKey
// doesn't match a recognized template.
type Output struct {
	Value        int64
	ScriptPubKey []byte
	Address      string
}

// DecodedTx is a fully parsed, non-witness-decoded transaction. Witness
// stacks are skipped on read — this pipeline signs but never needs to
// re-derive a script from witness data.
type DecodedTx struct {
	Version  int32
	Inputs   []Input
	Outputs  []Output
	Locktime uint32
}

// Fee returns the sum of prevValues minus the sum of output values. The
// caller supplies the previous outputs' values (by scanning its own UTXO
// set or fetching parent transactions); this function has no access to the
// chain itself.
func (t *DecodedTx) Fee(prevValues []int64) int64 {
	var in, out int64
	for _, v := range prevValues {
		in += v
	}
	for _, o := range t.Outputs {
		out += o.Value
	}
	return in - out
}

// Decode parses raw transaction hex into a DecodedTx, deriving each
// output's address for the given network.
func Decode(rawHex string, network bip84.Network) (*DecodedTx, error) {
	data, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, ErrInvalidHex
	}
	return DecodeBytes(data, network)
}

// DecodeBytes is Decode without the hex round trip, for callers that
// already have raw bytes (e.g. from a cached transaction).
func DecodeBytes(data []byte, network bip84.Network) (*DecodedTx, error) {
	off := 0
	if off+4 > len(data) {
		return nil, ErrOutOfBounds
	}
	version := int32(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	segwit := false
	if off+2 <= len(data) && data[off] == 0x00 && data[off+1] == 0x01 {
		segwit = true
		off += 2
	}

	vinCount, off2, err := ReadVarInt(data, off)
	if err != nil {
		return nil, err
	}
	off = off2

	inputs := make([]Input, 0, vinCount)
	for i := uint64(0); i < vinCount; i++ {
		end, err := sliceBounds(data, off, 32)
		if err != nil {
			return nil, err
		}
		var prevTxid [32]byte
		reverseCopy(prevTxid[:], data[off:end])
		off = end

		if off+4 > len(data) {
			return nil, ErrOutOfBounds
		}
		vout := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4

		scriptLen, off3, err := ReadVarInt(data, off)
		if err != nil {
			return nil, err
		}
		off = off3
		scriptEnd, err := sliceBounds(data, off, scriptLen)
		if err != nil {
			return nil, err
		}
		scriptSig := append([]byte(nil), data[off:scriptEnd]...)
		off = scriptEnd

		if off+4 > len(data) {
			return nil, ErrOutOfBounds
		}
		sequence := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4

		inputs = append(inputs, Input{PrevTxid: prevTxid, Vout: vout, ScriptSig: scriptSig, Sequence: sequence})
	}

	voutCount, off4, err := ReadVarInt(data, off)
	if err != nil {
		return nil, err
	}
	off = off4

	outputs := make([]Output, 0, voutCount)
	for i := uint64(0); i < voutCount; i++ {
		if off+8 > len(data) {
			return nil, ErrOutOfBounds
		}
		value := int64(binary.LittleEndian.Uint64(data[off : off+8]))
		off += 8

		scriptLen, off5, err := ReadVarInt(data, off)
		if err != nil {
			return nil, err
		}
		off = off5
		scriptEnd, err := sliceBounds(data, off, scriptLen)
		if err != nil {
			return nil, err
		}
		script := append([]byte(nil), data[off:scriptEnd]...)
		off = scriptEnd

		address, _ := AddressFromScript(script, network)
		outputs = append(outputs, Output{Value: value, ScriptPubKey: script, Address: address})
	}

	if segwit {
		for i := uint64(0); i < vinCount; i++ {
			itemCount, off6, err := ReadVarInt(data, off)
			if err != nil {
				return nil, err
			}
			off = off6
			for j := uint64(0); j < itemCount; j++ {
				itemLen, off7, err := ReadVarInt(data, off)
				if err != nil {
					return nil, err
				}
				off = off7
				end, err := sliceBounds(data, off, itemLen)
				if err != nil {
					return nil, err
				}
				off = end
			}
		}
	}

	if off+4 > len(data) {
		return nil, ErrOutOfBounds
	}
	locktime := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4

	return &DecodedTx{Version: version, Inputs: inputs, Outputs: outputs, Locktime: locktime}, nil
}

func reverseCopy(dst, src []byte) {
	for i := range src {
		dst[i] = src[len(src)-1-i]
	}
}
