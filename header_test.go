package codec2

import (
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		data, err := NewHeader(m).MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if len(data) != HeaderSize {
			t.Fatalf("header is %d bytes, want %d", len(data), HeaderSize)
		}
		if !IsC2Header(data) {
			t.Fatalf("mode %v: header not recognised", m)
		}
		h, mode, err := ParseHeader(data)
		if err != nil {
			t.Fatalf("mode %v: %v", m, err)
		}
		if mode != m || h.VersionMajor != VersionMajor || h.VersionMinor != VersionMinor {
			t.Fatalf("mode %v: parsed %+v as %v", m, h, mode)
		}
	}
}

func TestParseHeaderErrors(t *testing.T) {
	good, _ := NewHeader(Mode1200).MarshalBinary()

	badMagic := append([]byte(nil), good...)
	badMagic[1] = 0
	unknownMode := append([]byte(nil), good...)
	unknownMode[5] = 99

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", good[:HeaderSize-1]},
		{"magic", badMagic},
		{"mode", unknownMode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseHeader(tc.data); !errors.Is(err, ErrInvalidHeader) {
				t.Fatalf("error = %v, want ErrInvalidHeader", err)
			}
		})
	}
}
