package base

import (
	"fmt"
	"time"

	"github.com/openpoll/iclickerpoll/pkg"
	"github.com/openpoll/iclickerpoll/protocol"
)

// pendingLine is a deferred display write. At most one exists per line;
// repeat requests during the wait overwrite text (last writer wins).
type pendingLine struct {
	text  string
	timer *time.Timer
}

// SetDisplayLine writes text to display line 0 or 1, fire-and-forget.
// Text is padded or truncated to the 16-column display width.
//
// Physical writes across either line are spaced at least
// MinDisplayInterval apart; a request arriving sooner is deferred to fire
// exactly when the interval elapses, and later requests to the same line
// during the wait coalesce into the deferred write. A request matching
// the line's current text is dropped without touching the device.
func (s *Session) SetDisplayLine(line int, text string) error {
	if line < 0 || line > 1 {
		return fmt.Errorf("display line %d out of range", line)
	}
	text = string(protocol.PadDisplay(text))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return pkg.ErrClosed
	}
	if text == s.lastText[line] {
		return nil
	}
	s.lastText[line] = text

	if p := s.pending[line]; p != nil {
		p.text = text
		return nil
	}

	if wait := s.displayInterval - time.Since(s.lastDisplay); wait > 0 {
		p := &pendingLine{text: text}
		p.timer = time.AfterFunc(wait, func() { s.flushDisplay(line) })
		s.pending[line] = p
		return nil
	}
	return s.writeDisplayLocked(line, text)
}

// flushDisplay runs on the deferred timer and performs the pending write
// for line, rescheduling once more if the other line wrote while this
// timer was pending.
func (s *Session) flushDisplay(line int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending[line]
	if p == nil || s.closed {
		return
	}
	if wait := s.displayInterval - time.Since(s.lastDisplay); wait > 0 {
		p.timer = time.AfterFunc(wait, func() { s.flushDisplay(line) })
		return
	}
	s.pending[line] = nil

	if err := s.writeDisplayLocked(line, p.text); err != nil {
		pkg.LogWarn(pkg.ComponentBase, "deferred display write failed",
			"line", line,
			"error", err)
	}
}

// writeDisplayLocked performs the physical write. Callers hold s.mu.
func (s *Session) writeDisplayLocked(line int, text string) error {
	s.lastDisplay = time.Now()
	return s.tr.Send(protocol.Encode(protocol.SetDisplayLine{Line: line, Text: text}))
}
