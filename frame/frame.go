// Package frame defines the fixed 64-byte packet exchanged with the
// iClicker base station.
//
// Every transfer on the link, in either direction, carries exactly
// [Size] bytes. A [Frame] is a value type; copies are independent and
// equality is byte-wise via ==. Inbound frames may pack two independent
// [HalfSize]-byte sub-frames, exposed through [Frame.Half].
package frame

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Frame dimensions in bytes.
const (
	Size     = 64 // Full frame, as transferred on the link
	HalfSize = 32 // Sub-frame within an inbound frame
)

// Frame is a fixed 64-byte packet. Construct with New, FromHex, or MustHex;
// shorter input is zero-padded on the right, longer input is truncated.
type Frame [Size]byte

// New builds a Frame from b, truncating to Size bytes and zero-padding on
// the right.
func New(b []byte) Frame {
	var f Frame
	copy(f[:], b)
	return f
}

// FromHex builds a Frame from a hex string. Spaces are ignored, so command
// captures may be written in readable groups ("01 2a 21 41 05").
func FromHex(s string) (Frame, error) {
	s = strings.ReplaceAll(s, " ", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Frame{}, fmt.Errorf("frame hex %q: %w", s, err)
	}
	return New(b), nil
}

// MustHex is like FromHex but panics on malformed input. It is intended for
// fixed command tables and tests.
func MustHex(s string) Frame {
	f, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Bytes returns the frame contents as a new slice.
func (f Frame) Bytes() []byte {
	return f[:]
}

// Half returns sub-frame i (0 or 1) zero-padded to a full Frame.
func (f Frame) Half(i int) Frame {
	return New(f[i*HalfSize : (i+1)*HalfSize])
}

// String renders the frame as lowercase hex in 8-byte groups, matching the
// format used in protocol captures.
func (f Frame) String() string {
	const groupChars = 16
	s := hex.EncodeToString(f[:])
	groups := make([]string, 0, len(s)/groupChars)
	for i := 0; i < len(s); i += groupChars {
		groups = append(groups, s[i:i+groupChars])
	}
	return strings.Join(groups, " ")
}
