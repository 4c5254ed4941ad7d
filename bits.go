package codec2

const (
	wordSize   = 8   // Size of a byte in bits.
	indexMask  = 0x7 // Mask to pick the bit index within a byte.
	shiftRight = 3   // Right shift converting a bit index to a byte index.
)

// bitWriter packs fields MSB first into a frame buffer.
type bitWriter struct {
	buf  []byte
	nbit uint
}

func newBitWriter(buf []byte) *bitWriter {
	for i := range buf {
		buf[i] = 0
	}
	return &bitWriter{buf: buf}
}

// pack writes the low width bits of field, Gray coded.
func (bw *bitWriter) pack(field int, width uint) {
	bw.packNaturalOrGray(field, width, true)
}

// packNaturalOrGray writes field into the next width bits. Bits of field
// above width are discarded.
func (bw *bitWriter) packNaturalOrGray(field int, width uint, gray bool) {
	f := uint(field) & (1<<width - 1)
	if gray {
		f = (f >> 1) ^ f
	}
	for width != 0 {
		bitsLeft := wordSize - (bw.nbit & indexMask)
		sliceWidth := width
		if bitsLeft < width {
			sliceWidth = bitsLeft
		}
		wordIndex := bw.nbit >> shiftRight
		// Top sliceWidth bits of what remains of f.
		slice := (f >> (width - sliceWidth)) & (1<<sliceWidth - 1)
		bw.buf[wordIndex] |= byte(slice << (bitsLeft - sliceWidth))
		bw.nbit += sliceWidth
		width -= sliceWidth
	}
}

// bitReader unpacks fields written by bitWriter.
type bitReader struct {
	buf  []byte
	nbit uint
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf}
}

// unpack reads a Gray coded field of width bits.
func (br *bitReader) unpack(width uint) int {
	return br.unpackNaturalOrGray(width, true)
}

// unpackNaturalOrGray reads the next width bits. Callers size the buffer
// from the frame layout, so reading past the end is a programming error
// and panics.
func (br *bitReader) unpackNaturalOrGray(width uint, gray bool) int {
	var field uint
	for width != 0 {
		bitsLeft := wordSize - (br.nbit & indexMask)
		sliceWidth := width
		if bitsLeft < width {
			sliceWidth = bitsLeft
		}
		wordIndex := br.nbit >> shiftRight
		value := (uint(br.buf[wordIndex]) >> (bitsLeft - sliceWidth)) & (1<<sliceWidth - 1)
		field |= value << (width - sliceWidth)
		br.nbit += sliceWidth
		width -= sliceWidth
	}
	if !gray {
		return int(field)
	}
	// Gray to binary.
	t := field ^ (field >> 8)
	t ^= t >> 4
	t ^= t >> 2
	t ^= t >> 1
	return int(t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
