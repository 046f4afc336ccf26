package protocol

import (
	"encoding/hex"
	"reflect"
	"strings"
	"testing"

	"github.com/openpoll/iclickerpoll/frame"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   frame.Frame
		want Message
	}{
		{
			"set frequency aa",
			frame.MustHex("01 10 21 41"),
			SetFrequency{Ch1: 0, Ch2: 0},
		},
		{
			"set frequency bc",
			frame.MustHex("01 10 22 43"),
			SetFrequency{Ch1: 1, Ch2: 2},
		},
		{
			"start polling",
			frame.MustHex("01 11"),
			StartPolling{},
		},
		{
			"stop polling",
			frame.MustHex("01 12"),
			StopPolling{},
		},
		{
			"reset base",
			frame.MustHex("01 18 01 00"),
			ResetBase{},
		},
		{
			"reset base wrong payload",
			frame.MustHex("01 18 02 00"),
			Unknown{Raw: frame.MustHex("01 18 02 00")},
		},
		{
			"set poll type numeric",
			frame.MustHex("01 19 68 0a 01"),
			SetPollType{Quiz: QuizNumeric},
		},
		{
			"set protocol v2",
			frame.MustHex("01 2d"),
			SetProtocolV2{},
		},
		{
			"display line 0",
			Encode(SetDisplayLine{Line: 0, Text: "1:23          12"}),
			SetDisplayLine{Line: 0, Text: "1:23          12"},
		},
		{
			"clicker response",
			frame.MustHex("02 13 81 ab cd ef 07"),
			ClickerResponse{ID: "ABCDEF89", Answer: 'A', Seq: 7},
		},
		{
			"base status carries no event",
			frame.MustHex("02 1a 01"),
			Unknown{Raw: frame.MustHex("02 1a 01")},
		},
		{
			"unknown command class",
			frame.MustHex("03 10"),
			Unknown{Raw: frame.MustHex("03 10")},
		},
		{
			"zero frame",
			frame.Frame{},
			Unknown{Raw: frame.Frame{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	msgs := []Message{
		SetFrequency{Ch1: 0, Ch2: 0},
		SetFrequency{Ch1: 3, Ch2: 1},
		StartPolling{},
		StopPolling{},
		ResetBase{},
		SetPollType{Quiz: QuizAlpha},
		SetPollType{Quiz: QuizAlphanumeric},
		SetProtocolV2{},
		SetDisplayLine{Line: 0, Text: "0:00           0"},
		SetDisplayLine{Line: 1, Text: " 0  0  0  0  0  "},
		ClickerResponse{ID: ClickerIDFromBytes(0x12, 0x34, 0x56), Answer: 'E', Seq: 200},
		ClickerResponse{ID: ClickerIDFromBytes(0x00, 0x00, 0x00), Answer: AnswerRetract, Seq: 0},
		Unknown{Raw: frame.MustHex("01 29 a1 8f 96 8d 99 97 8f")},
	}

	for _, m := range msgs {
		if got := Decode(Encode(m)); !reflect.DeepEqual(got, m) {
			t.Errorf("Decode(Encode(%#v)) = %#v", m, got)
		}
	}
}

func TestClickerIDChecksum(t *testing.T) {
	// Sweep each identifier byte through its full range while varying the
	// others; the fourth byte must always be the XOR of the first three.
	for i := 0; i < 256; i++ {
		b0 := byte(i)
		b1 := byte(i * 7)
		b2 := byte(i * 131)

		id := ClickerIDFromBytes(b0, b1, b2)
		if len(id) != 8 {
			t.Fatalf("ClickerIDFromBytes(%#02x, %#02x, %#02x) = %q, want 8 hex chars", b0, b1, b2, id)
		}
		if string(id) != strings.ToUpper(string(id)) {
			t.Fatalf("ClickerIDFromBytes produced lowercase id %q", id)
		}

		raw, err := hex.DecodeString(string(id))
		if err != nil {
			t.Fatalf("id %q is not hex: %v", id, err)
		}
		if raw[3] != b0^b1^b2 {
			t.Fatalf("checksum byte = %#02x, want %#02x for (%#02x, %#02x, %#02x)",
				raw[3], b0^b1^b2, b0, b1, b2)
		}

		// The id must survive an encode/decode round trip, since the codec
		// recomputes the checksum rather than trusting the wire.
		r, ok := Decode(Encode(ClickerResponse{ID: id, Answer: 'A'})).(ClickerResponse)
		if !ok {
			t.Fatalf("encoded response did not decode as ClickerResponse")
		}
		if r.ID != id {
			t.Fatalf("checksum not stable: got %q, want %q", r.ID, id)
		}
	}

	// Known value: 0x12 ^ 0x34 ^ 0x56 == 0x70.
	if id := ClickerIDFromBytes(0x12, 0x34, 0x56); id != "12345670" {
		t.Errorf("ClickerIDFromBytes(0x12, 0x34, 0x56) = %q, want %q", id, "12345670")
	}
}

// responseHalf builds one 32-byte clicker response sub-frame.
func responseHalf(answer Answer, b0, b1, b2, seq byte) []byte {
	half := make([]byte, frame.HalfSize)
	half[0], half[1] = 0x02, 0x13
	half[2] = byte(answer) - 'A' + 0x81
	half[3], half[4], half[5] = b0, b1, b2
	half[6] = seq
	return half
}

func TestDecodeResponses(t *testing.T) {
	respA := responseHalf('A', 0x11, 0x22, 0x33, 1)
	respB := responseHalf('B', 0x44, 0x55, 0x66, 2)
	idle := make([]byte, frame.HalfSize)

	tests := []struct {
		name string
		in   frame.Frame
		want []ClickerResponse
	}{
		{
			"two events in order",
			frame.New(append(append([]byte{}, respA...), respB...)),
			[]ClickerResponse{
				{ID: ClickerIDFromBytes(0x11, 0x22, 0x33), Answer: 'A', Seq: 1},
				{ID: ClickerIDFromBytes(0x44, 0x55, 0x66), Answer: 'B', Seq: 2},
			},
		},
		{
			"valid left half only",
			frame.New(append(append([]byte{}, respA...), idle...)),
			[]ClickerResponse{
				{ID: ClickerIDFromBytes(0x11, 0x22, 0x33), Answer: 'A', Seq: 1},
			},
		},
		{
			"valid right half only",
			frame.New(append(append([]byte{}, idle...), respB...)),
			[]ClickerResponse{
				{ID: ClickerIDFromBytes(0x44, 0x55, 0x66), Answer: 'B', Seq: 2},
			},
		},
		{
			"no events",
			frame.MustHex("01 11"),
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeResponses(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeResponses() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestAnswer_IsRetraction(t *testing.T) {
	for a := Answer('A'); a <= 'E'; a++ {
		if a.IsRetraction() {
			t.Errorf("Answer(%c).IsRetraction() = true", a)
		}
	}
	if !AnswerRetract.IsRetraction() {
		t.Error("AnswerRetract.IsRetraction() = false")
	}
}

func TestParseQuizType(t *testing.T) {
	tests := []struct {
		in      string
		want    QuizType
		wantErr bool
	}{
		{"alpha", QuizAlpha, false},
		{"NUMERIC", QuizNumeric, false},
		{"alphanumeric", QuizAlphanumeric, false},
		{"bogus", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuizType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseQuizType(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuizType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseQuizType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPadDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "                "},
		{"0:12", "0:12            "},
		{"exactly sixteen!", "exactly sixteen!"},
		{"more than sixteen chars", "more than sixtee"},
	}

	for _, tt := range tests {
		if got := string(PadDisplay(tt.in)); got != tt.want {
			t.Errorf("PadDisplay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
