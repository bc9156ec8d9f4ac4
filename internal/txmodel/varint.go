package txmodel

import "encoding/binary"

// ReadVarInt reads a Bitcoin CompactSize integer starting at offset off,
// returning its value and the offset of the first byte after it.
func ReadVarInt(data []byte, off int) (uint64, int, error) {
	if off >= len(data) {
		return 0, 0, ErrOutOfBounds
	}
	prefix := data[off]
	switch {
	case prefix < 0xfd:
		return uint64(prefix), off + 1, nil
	case prefix == 0xfd:
		if off+3 > len(data) {
			return 0, 0, ErrOutOfBounds
		}
		return uint64(binary.LittleEndian.Uint16(data[off+1 : off+3])), off + 3, nil
	case prefix == 0xfe:
		if off+5 > len(data) {
			return 0, 0, ErrOutOfBounds
		}
		return uint64(binary.LittleEndian.Uint32(data[off+1 : off+5])), off + 5, nil
	default:
		if off+9 > len(data) {
			return 0, 0, ErrOutOfBounds
		}
		return binary.LittleEndian.Uint64(data[off+1 : off+9]), off + 9, nil
	}
}

// WriteVarInt appends n's CompactSize encoding to buf.
func WriteVarInt(buf []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xfd, 0, 0)
		binary.LittleEndian.PutUint16(buf[len(buf)-2:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf = append(buf, 0xfe, 0, 0, 0, 0)
		binary.LittleEndian.PutUint32(buf[len(buf)-4:], uint32(n))
		return buf
	default:
		buf = append(buf, 0xff, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.LittleEndian.PutUint64(buf[len(buf)-8:], n)
		return buf
	}
}

func sliceBounds(data []byte, off int, n uint64) (int, error) {
	end := off + int(n)
	if n > uint64(len(data)) || end < off || end > len(data) {
		return 0, ErrOutOfBounds
	}
	return end, nil
}
