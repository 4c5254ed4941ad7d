package codec2

import (
	"bytes"
	"fmt"
)

// .c2 file header constants.
const (
	HeaderSize   = 7
	VersionMajor = byte(0x01)
	VersionMinor = byte(0x00)
)

// Magic identifies a .c2 file.
var Magic = [3]byte{0xc0, 0xde, 0xc2}

// Header is the 7 byte header that starts a .c2 file.
type Header struct {
	Magic        [3]byte
	VersionMajor byte
	VersionMinor byte
	Mode         byte
	Flags        byte
}

// NewHeader returns the header for a file coded in mode.
func NewHeader(mode Mode) Header {
	return Header{
		Magic:        Magic,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		Mode:         byte(mode),
	}
}

// MarshalBinary encodes the header.
func (h Header) MarshalBinary() ([]byte, error) {
	return []byte{
		h.Magic[0], h.Magic[1], h.Magic[2],
		h.VersionMajor, h.VersionMinor,
		h.Mode, h.Flags,
	}, nil
}

// ParseHeader decodes the header at the start of data and checks that its
// magic and mode are known.
func ParseHeader(data []byte) (Header, Mode, error) {
	var h Header
	if !IsC2Header(data) {
		return h, 0, ErrInvalidHeader
	}
	copy(h.Magic[:], data[:3])
	h.VersionMajor = data[3]
	h.VersionMinor = data[4]
	h.Mode = data[5]
	h.Flags = data[6]

	mode := Mode(h.Mode)
	if _, err := mode.config(); err != nil {
		return h, 0, fmt.Errorf("%w: mode byte %d", ErrInvalidHeader, h.Mode)
	}
	return h, mode, nil
}

// IsC2Header reports whether data starts with a .c2 header.
func IsC2Header(data []byte) bool {
	return len(data) >= HeaderSize && bytes.Equal(data[:3], Magic[:])
}
