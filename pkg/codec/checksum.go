package codec

import "encoding/binary"

// Checksum computes the trailing checksum of an encoded element.
type Checksum interface {
	// Size is the encoded checksum length in bytes.
	Size() int

	// Append appends the checksum of data to dst and returns the result.
	Append(dst, data []byte) []byte

	// Verify reports whether sum is the checksum of data.
	Verify(data, sum []byte) bool
}

// NoChecksum is the zero-length checksum used by elements that are covered
// by their parent's checksum.
var NoChecksum Checksum = noChecksum{}

type noChecksum struct{}

func (noChecksum) Size() int                   { return 0 }
func (noChecksum) Append(dst, _ []byte) []byte { return dst }
func (noChecksum) Verify(_, sum []byte) bool   { return len(sum) == 0 }

// CRCCCITT is the 16-bit CRC-CCITT (polynomial 0x1021, initial value
// 0xFFFF, no reflection, no final XOR) used by IEEE C37.118 frames.
var CRCCCITT Checksum = crcCCITT{}

type crcCCITT struct{}

func (crcCCITT) Size() int { return 2 }

func (crcCCITT) Append(dst, data []byte) []byte {
	return binary.BigEndian.AppendUint16(dst, CRC16CCITT(data))
}

func (crcCCITT) Verify(data, sum []byte) bool {
	return len(sum) == 2 && binary.BigEndian.Uint16(sum) == CRC16CCITT(data)
}

var crcTable = func() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// CRC16CCITT returns the CRC-CCITT of data.
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>8)^b]
	}
	return crc
}
