// Package diskimage translates linear object bytes into the on-disk nibble
// stream of an Apple II 5.25" floppy, and places object-file bytes onto
// tracks and sectors according to a CSV placement script.
package diskimage

// Encode4and4 splits a byte into the Apple II "4-and-4" address-field
// encoding: two bytes, each with its top bit set and every other bit
// guaranteed high, so the disk controller's shift register stays
// self-synchronized.
func Encode4and4(b byte) (odd, even byte) {
	odd = 0xAA | ((b & 0xAA) >> 1)
	even = 0xAA | (b & 0x55)
	return odd, even
}

// Decode4and4 inverts Encode4and4.
func Decode4and4(odd, even byte) byte {
	return ((odd & 0x55) << 1) | (even & 0x55)
}

// checksum4and4 XORs volume, track, and sector together and 4-and-4 encodes
// the result, per the address-field layout.
func checksum4and4(volume, track, sector byte) (odd, even byte) {
	return Encode4and4(volume ^ track ^ sector)
}

// write6and2Table is the Apple II DOS 3.3 "write translate table": the 64
// legal on-disk byte values a 6-and-2 encoded nibble may take, indexed by
// the 6-bit value being encoded. Every entry has its high bit set and
// satisfies the controller's minimum-ones-density requirement.
var write6and2Table = [64]byte{
	0x96, 0x97, 0x9A, 0x9B, 0x9D, 0x9E, 0x9F, 0xA6,
	0xA7, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF, 0xB2, 0xB3,
	0xB4, 0xB5, 0xB6, 0xB7, 0xB9, 0xBA, 0xBB, 0xBC,
	0xBD, 0xBE, 0xBF, 0xCB, 0xCD, 0xCE, 0xCF, 0xD3,
	0xD6, 0xD7, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE,
	0xDF, 0xE5, 0xE6, 0xE7, 0xE9, 0xEA, 0xEB, 0xEC,
	0xED, 0xEE, 0xEF, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6,
	0xF7, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF,
}

var read6and2Table [256]int8

func init() {
	for i := range read6and2Table {
		read6and2Table[i] = -1
	}
	for value, nibble := range write6and2Table {
		read6and2Table[nibble] = int8(value)
	}
}

// reverseLow2 swaps a 2-bit value's two bits: 01 <-> 10. It is its own
// inverse, which is why the same helper drives both encode and decode.
func reverseLow2(v byte) byte {
	return ((v & 0x01) << 1) | ((v & 0x02) >> 1)
}

// Encode6and2 packs a 256-byte sector into 343 on-disk nibbles: an 86-byte
// auxiliary prologue carrying the low two bits of three source bytes each,
// followed by the high six bits of all 256 source bytes, XOR-chained and
// translated through write6and2Table, with one trailing checksum nibble
// that closes the chain.
func Encode6and2(sector [256]byte) [343]byte {
	var pre [342]byte

	for i := 0; i < 86; i++ {
		b1 := sector[i]
		b2 := sector[i+86]
		var b3 byte
		if i < 84 {
			b3 = sector[i+172]
		}
		pre[i] = reverseLow2(b1&0x03) | (reverseLow2(b2&0x03) << 2) | (reverseLow2(b3&0x03) << 4)
	}
	for i := 0; i < 256; i++ {
		pre[86+i] = sector[i] >> 2
	}

	var out [343]byte
	var prev byte
	for i, v := range pre {
		out[i] = write6and2Table[v^prev]
		prev = v
	}
	out[342] = write6and2Table[prev]
	return out
}

// Decode6and2 inverts Encode6and2. It returns false if any of the 343 input
// bytes is not a legal write-table value.
func Decode6and2(nibbles [343]byte) (sector [256]byte, ok bool) {
	var pre [342]byte
	var prev byte
	for i := 0; i < 342; i++ {
		raw := read6and2Table[nibbles[i]]
		if raw < 0 {
			return sector, false
		}
		pre[i] = byte(raw) ^ prev
		prev = pre[i]
	}
	if closing := read6and2Table[nibbles[342]]; closing < 0 || byte(closing) != prev {
		return sector, false
	}

	for i := 0; i < 256; i++ {
		sector[i] = pre[86+i] << 2
	}
	for i := 0; i < 86; i++ {
		v := pre[i]
		sector[i] |= reverseLow2(v & 0x03)
		sector[i+86] |= reverseLow2((v >> 2) & 0x03)
		if i < 84 {
			sector[i+172] |= reverseLow2((v >> 4) & 0x03)
		}
	}
	return sector, true
}
