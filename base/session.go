package base

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openpoll/iclickerpoll/base/hal"
	"github.com/openpoll/iclickerpoll/frame"
	"github.com/openpoll/iclickerpoll/pkg"
	"github.com/openpoll/iclickerpoll/protocol"
)

// Protocol timing.
const (
	// AckTimeout bounds the receive of an acknowledgment-checked send.
	AckTimeout = 100 * time.Millisecond

	// drainTimeout bounds each discard read of a drain sequence.
	drainTimeout = 100 * time.Millisecond

	// MinDisplayInterval is the minimum spacing between physical display
	// writes across both lines. Writing faster corrupts the display.
	MinDisplayInterval = 100 * time.Millisecond
)

// commandPacing is the settle delay between initialization commands,
// matching the captured reference traffic. Tests shorten it.
var commandPacing = 200 * time.Millisecond

// Fixed setup sequences captured from USB traffic of the vendor software.
// The acknowledgments of these commands are not individually verified;
// they are drained and discarded. Several of the command bytes have no
// known semantics beyond their position in the sequence.
var (
	setupSequenceA = []frame.Frame{
		frame.MustHex("01 2a 21 41 05"),
		frame.MustHex("01 12"),
		frame.MustHex("01 15"),
		frame.MustHex("01 16"),
	}

	setupSequenceB = []frame.Frame{
		frame.MustHex("01 29 a1 8f 96 8d 99 97 8f"),
		frame.MustHex("01 17 04"),
		frame.MustHex("01 17 03"),
		frame.MustHex("01 16"),
	}

	startSequence = []frame.Frame{
		frame.MustHex("01 17 03"),
		frame.MustHex("01 17 05"),
	}

	stopSequence = []frame.Frame{
		frame.MustHex("01 12"),
		frame.MustHex("01 16"),
		frame.MustHex("01 17 01"),
		frame.MustHex("01 17 03"),
		frame.MustHex("01 17 04"),
	}

	// confirmFrequency follows a frequency change and is ack-checked.
	confirmFrequency = frame.MustHex("01 16")
)

// Session sequences messages into a transport and tracks base-station
// state. All device I/O is serialized behind a single mutex.
type Session struct {
	tr hal.Transport

	mu          sync.Mutex
	initialized bool
	closed      bool

	// Display scheduling state, guarded by the same mutex as the
	// transport. See display.go.
	displayInterval time.Duration
	lastDisplay     time.Time
	lastText        [2]string
	pending         [2]*pendingLine
}

// NewSession creates a session over tr. The transport handle must already
// be open; the session assumes exclusive ownership of it.
func NewSession(tr hal.Transport) *Session {
	s := &Session{
		tr:              tr,
		displayInterval: MinDisplayInterval,
	}
	blank := string(protocol.PadDisplay(""))
	s.lastText[0], s.lastText[1] = blank, blank
	return s
}

// Initialized reports whether the full initialization sequence has
// completed successfully.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Initialize runs the multi-step setup sequence: set the operating
// frequency (acknowledgment-checked), drain setup sequence A, switch to
// the version 2 protocol, and drain setup sequence B. The session is
// marked initialized only if every step succeeds.
func (s *Session) Initialize(freq1, freq2 byte) error {
	pkg.LogInfo(pkg.ComponentBase, "initializing base station",
		"ch1", string('a'+freq1),
		"ch2", string('a'+freq2))

	if err := s.setFrequency(freq1, freq2); err != nil {
		return fmt.Errorf("set frequency: %w", err)
	}
	if err := s.drain(setupSequenceA); err != nil {
		return fmt.Errorf("setup sequence A: %w", err)
	}

	// Fire-and-forget: the protocol switch is not acknowledgment-checked.
	if err := s.send(protocol.Encode(protocol.SetProtocolV2{})); err != nil {
		return fmt.Errorf("set protocol v2: %w", err)
	}
	time.Sleep(commandPacing)

	if err := s.drain(setupSequenceB); err != nil {
		return fmt.Errorf("setup sequence B: %w", err)
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	pkg.LogInfo(pkg.ComponentBase, "base station initialized")
	return nil
}

// setFrequency sets the two operating frequency channel codes (0-3) with
// the confirm command and settle delays the device requires.
func (s *Session) setFrequency(ch1, ch2 byte) error {
	time.Sleep(commandPacing)
	if err := s.SendAwaitAck(protocol.SetFrequency{Ch1: ch1, Ch2: ch2}, AckTimeout); err != nil {
		return err
	}
	time.Sleep(commandPacing)
	if err := s.sendAwaitAck(confirmFrequency, AckTimeout); err != nil {
		return err
	}
	time.Sleep(commandPacing)
	return nil
}

// StartPoll puts the base station into polling mode with the given quiz
// type. The session must be initialized.
func (s *Session) StartPoll(quiz protocol.QuizType) error {
	if !s.Initialized() {
		return pkg.ErrNotInitialized
	}

	if err := s.drain(startSequence); err != nil {
		return fmt.Errorf("start sequence: %w", err)
	}
	if err := s.send(protocol.Encode(protocol.SetPollType{Quiz: quiz})); err != nil {
		return fmt.Errorf("set poll type: %w", err)
	}
	time.Sleep(commandPacing)
	if err := s.send(protocol.Encode(protocol.StartPolling{})); err != nil {
		return fmt.Errorf("start polling: %w", err)
	}

	pkg.LogDebug(pkg.ComponentBase, "poll started on base station", "type", quiz.String())
	return nil
}

// StopPoll takes the base station out of polling mode.
func (s *Session) StopPoll() error {
	if err := s.drain(stopSequence); err != nil {
		return fmt.Errorf("stop sequence: %w", err)
	}
	pkg.LogDebug(pkg.ComponentBase, "poll stopped on base station")
	return nil
}

// SendAwaitAck sends m and performs one blocking receive, expecting the
// exact acknowledgment frame {b0, b1, AckByte} zero-padded. Any other
// reply, or none within timeout, fails with pkg.ErrProtocolMismatch.
// There is no retry.
func (s *Session) SendAwaitAck(m protocol.Message, timeout time.Duration) error {
	return s.sendAwaitAck(protocol.Encode(m), timeout)
}

func (s *Session) sendAwaitAck(f frame.Frame, timeout time.Duration) error {
	want := frame.New([]byte{f[0], f[1], protocol.AckByte})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tr.Send(f); err != nil {
		return fmt.Errorf("send %v: %w", f, err)
	}
	got, err := s.tr.Receive(timeout)
	if err != nil {
		return fmt.Errorf("%w: sent %v, no acknowledgment: %v", pkg.ErrProtocolMismatch, f, err)
	}
	if got != want {
		return fmt.Errorf("%w: sent %v, got %v, want %v", pkg.ErrProtocolMismatch, f, got, want)
	}
	return nil
}

// Read performs one receive with the given timeout, for response
// ingestion. A silent device yields pkg.ErrTimeout.
func (s *Session) Read(timeout time.Duration) (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Receive(timeout)
}

// send writes one frame with no acknowledgment handling.
func (s *Session) send(f frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Send(f)
}

// drain sends each command in order and, after each send, reads and
// discards replies until the transport reports nothing more to read.
func (s *Session) drain(seq []frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range seq {
		if err := s.tr.Send(f); err != nil {
			return fmt.Errorf("send %v: %w", f, err)
		}
		for {
			_, err := s.tr.Receive(drainTimeout)
			if errors.Is(err, pkg.ErrTimeout) {
				break
			}
			if err != nil {
				return fmt.Errorf("drain after %v: %w", f, err)
			}
		}
	}
	return nil
}

// Close cancels any pending display writes and releases the transport.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pkg.ErrClosed
	}
	s.closed = true
	for line, p := range s.pending {
		if p != nil {
			p.timer.Stop()
			s.pending[line] = nil
		}
	}
	s.mu.Unlock()

	return s.tr.Close()
}
