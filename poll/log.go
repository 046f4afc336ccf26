package poll

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openpoll/iclickerpoll/protocol"
)

// Response is one observed vote. Time records arrival and is excluded
// from equality: two responses are duplicates when clicker id, answer,
// and sequence number all match.
type Response struct {
	ID     protocol.ClickerID
	Answer protocol.Answer
	Seq    byte
	Time   time.Time
}

// Equal reports whether two responses represent the same vote,
// ignoring arrival time.
func (r Response) Equal(o Response) bool {
	return r.ID == o.ID && r.Answer == o.Answer && r.Seq == o.Seq
}

// String formats the response for operator output.
func (r Response) String() string {
	return fmt.Sprintf("%s: %c (%d at %s)", r.ID, r.Answer, r.Seq, r.Time.Format("15:04:05"))
}

// Log records responses per clicker in arrival order. It is safe for one
// writer (the ingestion loop) with concurrent readers (display refresh,
// export).
type Log struct {
	mu    sync.RWMutex
	order []protocol.ClickerID
	byID  map[protocol.ClickerID][]Response
}

// NewLog creates an empty response log.
func NewLog() *Log {
	return &Log{byID: make(map[protocol.ClickerID][]Response)}
}

// Add appends r to its clicker's sequence unless an equal response (per
// Response.Equal) was already recorded for that clicker. This is the sole
// deduplication mechanism: a device retransmitting the same keypress is
// dropped, while a genuine answer change is kept. Add reports whether the
// response was recorded.
func (l *Log) Add(r Response) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, prev := range l.byID[r.ID] {
		if prev.Equal(r) {
			return false
		}
	}
	if _, seen := l.byID[r.ID]; !seen {
		l.order = append(l.order, r.ID)
	}
	l.byID[r.ID] = append(l.byID[r.ID], r)
	return true
}

// Len returns the number of clickers that have responded.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// MostRecent returns each clicker's latest response, in the order
// clickers first appeared.
func (l *Log) MostRecent() []Response {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Response, 0, len(l.order))
	for _, id := range l.order {
		seq := l.byID[id]
		out = append(out, seq[len(seq)-1])
	}
	return out
}

// ExportCSV renders one "clickerId,answer" line per clicker, using each
// clicker's most recent response, in log iteration order. There is no
// header and no trailing newline.
func (l *Log) ExportCSV() string {
	recent := l.MostRecent()
	lines := make([]string, len(recent))
	for i, r := range recent {
		lines[i] = fmt.Sprintf("%s,%c", r.ID, r.Answer)
	}
	return strings.Join(lines, "\n")
}
