package poll

import (
	"fmt"
	"math"

	"github.com/openpoll/iclickerpoll/protocol"
)

// tallyAnswers is the set of answers shown on the display, in row order.
var tallyAnswers = []protocol.Answer{'A', 'B', 'C', 'D', 'E'}

// Tally counts the most-recent non-retracted answer per clicker, grouped
// by answer value. It is derived from a Log snapshot, never stored.
type Tally map[protocol.Answer]int

// TallyOf computes the tally over each clicker's most recent response,
// excluding retractions.
func TallyOf(recent []Response) Tally {
	t := make(Tally)
	for _, r := range recent {
		if r.Answer.IsRetraction() {
			continue
		}
		t[r.Answer]++
	}
	return t
}

// Total returns the number of counted votes.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Percent returns the rounded percentage of votes for a, or 0 when no
// votes have been counted.
func (t Tally) Percent(a protocol.Answer) int {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(t[a]) / float64(total)))
}

// Row renders the A-E percentages as the display's tally line.
func (t Tally) Row() string {
	return fmt.Sprintf("%2d %2d %2d %2d %2d",
		t.Percent(tallyAnswers[0]),
		t.Percent(tallyAnswers[1]),
		t.Percent(tallyAnswers[2]),
		t.Percent(tallyAnswers[3]),
		t.Percent(tallyAnswers[4]))
}
