package protocol

import (
	"encoding/hex"

	"github.com/openpoll/iclickerpoll/frame"
)

// Command classes (byte 0) and command ids (byte 1).
const (
	classCommand = 0x01 // Host-issued control commands
	classEvent   = 0x02 // Base-station events

	cmdSetFrequency   = 0x10
	cmdStartPolling   = 0x11
	cmdStopPolling    = 0x12
	cmdSetDisplay0    = 0x13
	cmdSetDisplay1    = 0x14
	cmdResetBase      = 0x18
	cmdSetPollType    = 0x19
	cmdSetProtocolV2  = 0x2d
	evClickerResponse = 0x13
	evBaseStatus      = 0x1a // Recognized but carries no event
)

// Payload encoding bases.
const (
	freqCh1Base = 0x21 // Channel 1 code offset
	freqCh2Base = 0x41 // Channel 2 code offset
	quizBase    = 0x67 // Quiz type offset
	answerBase  = 0x81 // 0x81 encodes 'A'
)

// AckByte is the third byte of a command acknowledgment frame. A command
// {b0, b1, ...} is acknowledged by {b0, b1, AckByte} zero-padded.
const AckByte = 0xaa

// DisplayWidth is the column count of each base-station display line.
const DisplayWidth = 16

// Message is the decoded semantic meaning of a Frame: a control command or
// a base-station event.
type Message interface {
	message()
}

// SetFrequency configures the two operating frequency channel codes (0-3,
// corresponding to letters a-d).
type SetFrequency struct {
	Ch1, Ch2 byte
}

// StartPolling begins accepting clicker responses.
type StartPolling struct{}

// StopPolling stops accepting clicker responses.
type StopPolling struct{}

// ResetBase resets the base station.
type ResetBase struct{}

// SetPollType selects the response alphabet for the next poll.
type SetPollType struct {
	Quiz QuizType
}

// SetProtocolV2 switches the base station to the version 2 protocol.
type SetProtocolV2 struct{}

// SetDisplayLine writes one line of the two-line character display. Text is
// padded or truncated to DisplayWidth characters on encode.
type SetDisplayLine struct {
	Line int // 0 or 1
	Text string
}

// ClickerResponse is a vote event from a handheld transmitter.
type ClickerResponse struct {
	ID     ClickerID
	Answer Answer
	Seq    byte
}

// Unknown wraps a frame the codec does not recognize. It round-trips its
// raw bytes unchanged.
type Unknown struct {
	Raw frame.Frame
}

func (SetFrequency) message()    {}
func (StartPolling) message()    {}
func (StopPolling) message()     {}
func (ResetBase) message()       {}
func (SetPollType) message()     {}
func (SetProtocolV2) message()   {}
func (SetDisplayLine) message()  {}
func (ClickerResponse) message() {}
func (Unknown) message()         {}

// Decode maps a frame to its Message. It is total: unrecognized byte
// patterns decode to Unknown.
func Decode(f frame.Frame) Message {
	switch f[0] {
	case classCommand:
		switch f[1] {
		case cmdSetFrequency:
			return SetFrequency{Ch1: f[2] - freqCh1Base, Ch2: f[3] - freqCh2Base}
		case cmdStartPolling:
			return StartPolling{}
		case cmdStopPolling:
			return StopPolling{}
		case cmdSetDisplay0, cmdSetDisplay1:
			line := 0
			if f[1] == cmdSetDisplay1 {
				line = 1
			}
			return SetDisplayLine{Line: line, Text: string(f[2 : 2+DisplayWidth])}
		case cmdResetBase:
			if f[2] == 0x01 && f[3] == 0x00 {
				return ResetBase{}
			}
		case cmdSetPollType:
			return SetPollType{Quiz: QuizType(int(f[2]) - quizBase)}
		case cmdSetProtocolV2:
			return SetProtocolV2{}
		}
	case classEvent:
		if f[1] == evClickerResponse {
			return ClickerResponse{
				ID:     ClickerIDFromBytes(f[3], f[4], f[5]),
				Answer: Answer(f[2] - answerBase + 'A'),
				Seq:    f[6],
			}
		}
	}
	return Unknown{Raw: f}
}

// Encode maps a Message to its frame. It is the inverse of Decode for every
// recognized variant; Unknown round-trips its stored raw bytes.
func Encode(m Message) frame.Frame {
	switch m := m.(type) {
	case SetFrequency:
		return frame.New([]byte{classCommand, cmdSetFrequency, freqCh1Base + m.Ch1, freqCh2Base + m.Ch2})
	case StartPolling:
		return frame.New([]byte{classCommand, cmdStartPolling})
	case StopPolling:
		return frame.New([]byte{classCommand, cmdStopPolling})
	case ResetBase:
		return frame.New([]byte{classCommand, cmdResetBase, 0x01, 0x00})
	case SetPollType:
		return frame.New([]byte{classCommand, cmdSetPollType, byte(quizBase + int(m.Quiz)), 0x0a, 0x01})
	case SetProtocolV2:
		return frame.New([]byte{classCommand, cmdSetProtocolV2})
	case SetDisplayLine:
		id := byte(cmdSetDisplay0)
		if m.Line != 0 {
			id = cmdSetDisplay1
		}
		b := make([]byte, 2, 2+DisplayWidth)
		b[0], b[1] = classCommand, id
		b = append(b, PadDisplay(m.Text)...)
		return frame.New(b)
	case ClickerResponse:
		var id [4]byte
		hex.Decode(id[:], []byte(m.ID)) // malformed ids encode as zero bytes
		return frame.New([]byte{
			classEvent, evClickerResponse,
			byte(m.Answer) - 'A' + answerBase,
			id[0], id[1], id[2],
			m.Seq,
		})
	case Unknown:
		return m.Raw
	}
	return frame.Frame{}
}

// DecodeResponses extracts clicker response events from an inbound frame.
// The frame is split into two independent halves, each decoded on its own;
// only halves that decode to ClickerResponse contribute, in left-to-right
// order. A frame thus yields 0, 1, or 2 events.
func DecodeResponses(f frame.Frame) []ClickerResponse {
	var events []ClickerResponse
	for i := 0; i < frame.Size/frame.HalfSize; i++ {
		if r, ok := Decode(f.Half(i)).(ClickerResponse); ok {
			events = append(events, r)
		}
	}
	return events
}

// PadDisplay pads or truncates text to exactly DisplayWidth characters.
func PadDisplay(text string) []byte {
	b := make([]byte, DisplayWidth)
	for i := range b {
		b[i] = ' '
	}
	copy(b, text)
	return b
}
