package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsWrap(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"device not found", ErrDeviceNotFound},
		{"protocol mismatch", ErrProtocolMismatch},
		{"timeout", ErrTimeout},
		{"not initialized", ErrNotInitialized},
		{"already polling", ErrAlreadyPolling},
		{"closed", ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("operation failed: %w", tt.sentinel)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, tt.sentinel)
			}
		})
	}
}
