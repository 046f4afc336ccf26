// Package base implements the iClicker base-station session.
//
// A [Session] turns protocol messages into acknowledged device state
// changes over a [hal.Transport]. It owns the synchronous command/ack
// handshake, the multi-step initialization sequence, the start/stop
// command sequences, and the rate-limited two-line display.
//
// # Serialized I/O
//
// A single mutex guards every send and receive, so a display write can
// never interleave mid-packet with a response read. Blocking receives hold
// the lock for at most their timeout.
//
// # Fail-fast handshake
//
// Acknowledgment-checked sends expect the exact frame {b0, b1, 0xAA}
// zero-padded. Anything else, including silence, fails with
// pkg.ErrProtocolMismatch and is never retried: a mismatch means the base
// station is desynchronized, and a silent retry could desynchronize
// command sequencing further.
package base
