package bitio

// Variable-length integer fields in the JPEG XL header style. A two-bit
// selector picks the encoding, so small values cost few bits.

// ReadU64 reads a U64 field:
//
//	selector 0: 0
//	selector 1: 1 + 4 bits
//	selector 2: 17 + 8 bits
//	selector 3: 12 bits, then 8-bit groups while a continuation bit is
//	            set; the group at shift 60 has 4 bits.
func (br *Reader) ReadU64() uint64 {
	switch br.ReadBits(2) {
	case 0:
		return 0
	case 1:
		return 1 + br.ReadBits(4)
	case 2:
		return 17 + br.ReadBits(8)
	}
	v := br.ReadBits(12)
	shift := uint(12)
	for br.ReadBool() {
		if shift == 60 {
			v |= br.ReadBits(4) << shift
			break
		}
		v |= br.ReadBits(8) << shift
		shift += 8
	}
	return v
}

// WriteU64 writes v as a U64 field.
func (bw *Writer) WriteU64(v uint64) {
	switch {
	case v == 0:
		bw.WriteBits(0, 2)
		return
	case v <= 16:
		bw.WriteBits(1, 2)
		bw.WriteBits(v-1, 4)
		return
	case v <= 272:
		bw.WriteBits(2, 2)
		bw.WriteBits(v-17, 8)
		return
	}
	bw.WriteBits(3, 2)
	bw.WriteBits(v&0xfff, 12)
	v >>= 12
	shift := 12
	for {
		if v == 0 {
			bw.WriteBool(false)
			return
		}
		bw.WriteBool(true)
		if shift == 60 {
			bw.WriteBits(v&0xf, 4)
			return
		}
		bw.WriteBits(v&0xff, 8)
		v >>= 8
		shift += 8
	}
}
