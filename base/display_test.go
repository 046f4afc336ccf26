package base

import (
	"strings"
	"testing"
	"time"

	"github.com/openpoll/iclickerpoll/protocol"
)

// displayText extracts the 16 text characters from an encoded display
// write.
func displayText(t *testing.T, m protocol.Message) string {
	t.Helper()
	d, ok := m.(protocol.SetDisplayLine)
	if !ok {
		t.Fatalf("frame decoded to %#v, want SetDisplayLine", m)
	}
	return d.Text
}

func TestSetDisplayLine_PadsAndEncodes(t *testing.T) {
	tr := &mockTransport{}
	s := NewSession(tr)

	if err := s.SetDisplayLine(0, "1:23"); err != nil {
		t.Fatalf("SetDisplayLine() error = %v", err)
	}

	got := tr.sentFrames()
	if len(got) != 1 {
		t.Fatalf("sent %d frames, want 1", len(got))
	}
	text := displayText(t, protocol.Decode(got[0]))
	if text != "1:23"+strings.Repeat(" ", 12) {
		t.Errorf("display text = %q, want padded %q", text, "1:23")
	}
}

func TestSetDisplayLine_RejectsBadLine(t *testing.T) {
	s := NewSession(&mockTransport{})
	if err := s.SetDisplayLine(2, "x"); err == nil {
		t.Error("SetDisplayLine(2, ...) error = nil, want out-of-range error")
	}
}

func TestSetDisplayLine_UnchangedTextSkipped(t *testing.T) {
	tr := &mockTransport{}
	s := NewSession(tr)

	if err := s.SetDisplayLine(0, "same"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDisplayLine(0, "same"); err != nil {
		t.Fatal(err)
	}
	if got := len(tr.sentFrames()); got != 1 {
		t.Errorf("sent %d frames, want 1 (unchanged text must not rewrite)", got)
	}
}

func TestSetDisplayLine_RateLimit(t *testing.T) {
	tr := &mockTransport{}
	s := NewSession(tr)

	// First write goes out immediately.
	if err := s.SetDisplayLine(0, "first"); err != nil {
		t.Fatal(err)
	}

	// Two more requests inside the rate-limit window coalesce into one
	// deferred write carrying the later text.
	if err := s.SetDisplayLine(0, "second"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDisplayLine(0, "third"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(3 * MinDisplayInterval)

	got := tr.sentFrames()
	if len(got) != 2 {
		t.Fatalf("sent %d frames, want 2", len(got))
	}
	if text := displayText(t, protocol.Decode(got[1])); !strings.HasPrefix(text, "third") {
		t.Errorf("deferred write text = %q, want the later request %q", text, "third")
	}

	tr.mu.Lock()
	gap := tr.sentAt[1].Sub(tr.sentAt[0])
	tr.mu.Unlock()
	if gap < MinDisplayInterval {
		t.Errorf("physical writes %v apart, want at least %v", gap, MinDisplayInterval)
	}
}

func TestSetDisplayLine_CrossLineRateLimit(t *testing.T) {
	tr := &mockTransport{}
	s := NewSession(tr)

	// The interval applies across lines, not per line.
	if err := s.SetDisplayLine(0, "time row"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDisplayLine(1, "tally row"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(3 * MinDisplayInterval)

	got := tr.sentFrames()
	if len(got) != 2 {
		t.Fatalf("sent %d frames, want 2", len(got))
	}
	d0 := protocol.Decode(got[0]).(protocol.SetDisplayLine)
	d1 := protocol.Decode(got[1]).(protocol.SetDisplayLine)
	if d0.Line != 0 || d1.Line != 1 {
		t.Errorf("write order = line %d then %d, want 0 then 1", d0.Line, d1.Line)
	}

	tr.mu.Lock()
	gap := tr.sentAt[1].Sub(tr.sentAt[0])
	tr.mu.Unlock()
	if gap < MinDisplayInterval {
		t.Errorf("cross-line writes %v apart, want at least %v", gap, MinDisplayInterval)
	}
}

func TestSetDisplayLine_AfterCloseFails(t *testing.T) {
	tr := &mockTransport{}
	s := NewSession(tr)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDisplayLine(0, "late"); err == nil {
		t.Error("SetDisplayLine() after Close error = nil, want ErrClosed")
	}
}
