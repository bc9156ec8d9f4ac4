package txbuilder

import (
	"encoding/binary"

	"github.com/nimbuswallet/core/internal/codec"
	"github.com/nimbuswallet/core/internal/txmodel"
)

// txInput and txOutput are the builder's own plain serialization shapes,
// kept separate from txmodel.Input/Output since the builder writes
// wire-order txids while the decoder reads display-order ones.
type txInput struct {
	prevTxidWire [32]byte // wire (internal) order
	vout         uint32
	sequence     uint32
}

type txOutput struct {
	value        int64
	scriptPubKey []byte
}

// bip143Preimage computes the BIP143 signature hash for the inputIdx'th
// input of a P2WPKH spend, per BIP143's "Specification".
func bip143Preimage(version int32, inputs []txInput, outputs []txOutput, inputIdx int, scriptCode []byte, inputValue int64, locktime uint32, sighashType uint32) []byte {
	var hashPrevouts, hashSequence, hashOutputs [32]byte

	{
		var buf []byte
		for _, in := range inputs {
			buf = append(buf, in.prevTxidWire[:]...)
			buf = appendU32LE(buf, in.vout)
		}
		hashPrevouts = codec.SHA256d(buf)
	}
	{
		var buf []byte
		for _, in := range inputs {
			buf = appendU32LE(buf, in.sequence)
		}
		hashSequence = codec.SHA256d(buf)
	}
	{
		var buf []byte
		for _, out := range outputs {
			buf = appendU64LE(buf, uint64(out.value))
			buf = txmodel.WriteVarInt(buf, uint64(len(out.scriptPubKey)))
			buf = append(buf, out.scriptPubKey...)
		}
		hashOutputs = codec.SHA256d(buf)
	}

	in := inputs[inputIdx]

	var preimage []byte
	preimage = appendU32LE(preimage, uint32(version))
	preimage = append(preimage, hashPrevouts[:]...)
	preimage = append(preimage, hashSequence[:]...)
	preimage = append(preimage, in.prevTxidWire[:]...)
	preimage = appendU32LE(preimage, in.vout)
	preimage = txmodel.WriteVarInt(preimage, uint64(len(scriptCode)))
	preimage = append(preimage, scriptCode...)
	preimage = appendU64LE(preimage, uint64(inputValue))
	preimage = appendU32LE(preimage, in.sequence)
	preimage = append(preimage, hashOutputs[:]...)
	preimage = appendU32LE(preimage, locktime)
	preimage = appendU32LE(preimage, sighashType)

	hash := codec.SHA256d(preimage)
	return hash[:]
}

// p2wpkhScriptCode returns the "scriptCode" BIP143 requires for a P2WPKH
// input: the legacy P2PKH script built from the same pubkey hash.
func p2wpkhScriptCode(pubKeyHash []byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xa9, 0x14)
	script = append(script, pubKeyHash...)
	script = append(script, 0x88, 0xac)
	return script
}

func appendU32LE(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64LE(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
