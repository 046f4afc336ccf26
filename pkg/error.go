package pkg

import "errors"

// Base-station protocol errors.
var (
	// ErrDeviceNotFound indicates no base station is present on the bus.
	ErrDeviceNotFound = errors.New("no iClicker base station found")

	// ErrProtocolMismatch indicates an acknowledgment-checked command
	// received an unexpected (or no) reply. The base station is assumed
	// to be desynchronized; the operation must not be retried.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrTimeout indicates a bounded receive produced no data. For
	// response ingestion and drain sequences this is not a failure.
	ErrTimeout = errors.New("receive timeout")

	// ErrNotInitialized indicates the base station has not completed its
	// initialization sequence.
	ErrNotInitialized = errors.New("base station not initialized")

	// ErrAlreadyPolling indicates a polling session is already running.
	ErrAlreadyPolling = errors.New("poll already running")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")
)
