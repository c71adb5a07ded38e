package rtcp

import (
	"encoding/binary"
)

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func AbsInt64(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

func uint16ToBytes(i uint16) []byte {
	bytes := make([]byte, 2)
	binary.BigEndian.PutUint16(bytes, i)
	return bytes
}

func uint32ToBytes(i uint32) []byte {
	bytes := make([]byte, 4)
	binary.BigEndian.PutUint32(bytes, i)
	return bytes
}

func uint64ToBytes(i uint64) []byte {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, i)
	return bytes
}
