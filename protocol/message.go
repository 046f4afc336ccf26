package protocol

import (
	"fmt"
	"strings"
)

// ClickerID identifies a handheld transmitter: eight uppercase hex
// characters encoding three identifier bytes plus a checksum byte.
type ClickerID string

// ClickerIDFromBytes derives a ClickerID from the three raw identifier
// bytes. The fourth byte is always recomputed as b0^b1^b2 rather than
// trusted from the wire, making the id self-verifying against corruption.
func ClickerIDFromBytes(b0, b1, b2 byte) ClickerID {
	return ClickerID(fmt.Sprintf("%02X%02X%02X%02X", b0, b1, b2, b0^b1^b2))
}

// Answer is a single vote value, 'A' through 'E', or 'F' to retract a
// previously submitted vote.
type Answer byte

// AnswerRetract is the retraction marker: a vote of 'F' voids the
// clicker's previous answer.
const AnswerRetract Answer = 'F'

// IsRetraction reports whether the answer voids a previous vote.
func (a Answer) IsRetraction() bool {
	return a == AnswerRetract
}

// QuizType selects the response alphabet for a poll.
type QuizType int

// Supported quiz types.
const (
	QuizAlpha        QuizType = iota // A-E responses
	QuizNumeric                      // Numeric responses
	QuizAlphanumeric                 // Mixed responses
)

// String returns the CLI spelling of the quiz type.
func (q QuizType) String() string {
	switch q {
	case QuizAlpha:
		return "alpha"
	case QuizNumeric:
		return "numeric"
	case QuizAlphanumeric:
		return "alphanumeric"
	default:
		return fmt.Sprintf("quiztype(%d)", int(q))
	}
}

// ParseQuizType parses the CLI spelling of a quiz type.
func ParseQuizType(s string) (QuizType, error) {
	switch strings.ToLower(s) {
	case "alpha":
		return QuizAlpha, nil
	case "numeric":
		return QuizNumeric, nil
	case "alphanumeric":
		return QuizAlphanumeric, nil
	default:
		return 0, fmt.Errorf("poll type must be alpha, numeric, or alphanumeric, not %q", s)
	}
}
