package codec

import (
	"bytes"
	"math/big"
)

// base58Alphabet is Bitcoin's Base58 alphabet: it excludes 0, O, I and l to
// avoid visual ambiguity. Grounded on the teacher's hand-rolled
// chain/bsv/address.go encoder, generalized here for arbitrary version bytes
// (P2PKH and P2SH share this codec, only the version byte differs).
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const checksumLen = 4

//nolint:gochecknoglobals // lookup table built once from the alphabet constant
var base58Index [256]int8

func init() {
	for i := range base58Index {
		base58Index[i] = -1
	}
	for i, c := range base58Alphabet {
		base58Index[byte(c)] = int8(i)
	}
}

// Base58Encode encodes raw bytes using Bitcoin's Base58 alphabet, preserving
// leading zero bytes as leading '1' characters.
func Base58Encode(input []byte) string {
	leadingZeros := 0
	for _, b := range input {
		if b != 0 {
			break
		}
		leadingZeros++
	}

	x := new(big.Int).SetBytes(input)
	base := big.NewInt(58)
	mod := new(big.Int)
	var out []byte
	for x.Sign() > 0 {
		x.DivMod(x, base, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for i := 0; i < leadingZeros; i++ {
		out = append(out, base58Alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Base58Decode decodes a Base58 string back to raw bytes. It rejects any
// character outside the Bitcoin alphabet.
func Base58Decode(s string) ([]byte, error) {
	leadingOnes := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '1' {
			break
		}
		leadingOnes++
	}

	result := new(big.Int)
	base := big.NewInt(58)
	digit := new(big.Int)
	for i := 0; i < len(s); i++ {
		v := base58Index[s[i]]
		if v < 0 {
			return nil, ErrInvalidEncoding
		}
		digit.SetInt64(int64(v))
		result.Mul(result, base)
		result.Add(result, digit)
	}

	decoded := result.Bytes()
	out := make([]byte, leadingOnes+len(decoded))
	copy(out[leadingOnes:], decoded)
	return out, nil
}

// Base58CheckEncode encodes version||payload with a 4-byte SHA-256d checksum
// appended, per Bitcoin's Base58Check format.
func Base58CheckEncode(version byte, payload []byte) string {
	data := make([]byte, 1+len(payload))
	data[0] = version
	copy(data[1:], payload)

	checksum := SHA256d(data)
	full := make([]byte, len(data)+checksumLen)
	copy(full, data)
	copy(full[len(data):], checksum[:checksumLen])
	return Base58Encode(full)
}

// Base58CheckDecode decodes a Base58Check string, verifying its checksum,
// and returns the version byte and payload.
func Base58CheckDecode(s string) (version byte, payload []byte, err error) {
	decoded, err := Base58Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 1+checksumLen {
		return 0, nil, ErrInvalidLength
	}

	data := decoded[:len(decoded)-checksumLen]
	checksum := decoded[len(decoded)-checksumLen:]

	want := SHA256d(data)
	if !bytes.Equal(checksum, want[:checksumLen]) {
		return 0, nil, ErrInvalidChecksum
	}

	return data[0], data[1:], nil
}
