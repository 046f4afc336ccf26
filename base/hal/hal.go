// Package hal defines the transport boundary between the base-station
// session and the physical USB HID link.
//
// The session and poll engine interact with hardware exclusively through
// the [Transport] interface. Bus enumeration, kernel-driver detachment,
// and configuration selection belong to the concrete implementation
// (see the hidapi subpackage); the core never performs them.
package hal

import (
	"time"

	"github.com/openpoll/iclickerpoll/frame"
)

// USB identifiers of the iClicker base station.
const (
	VendorID  = 0x1881
	ProductID = 0x0150
)

// Transport is a synchronous send/receive channel for raw frames.
//
// Implementations are not required to be safe for concurrent use; the
// session serializes all device I/O behind a single lock.
type Transport interface {
	// Send writes one frame to the device.
	Send(f frame.Frame) error

	// Receive reads one frame, blocking up to timeout. When the device
	// has nothing to send it returns pkg.ErrTimeout, which callers treat
	// as "nothing to read now" rather than a failure.
	Receive(timeout time.Duration) (frame.Frame, error)

	// Close releases the device handle.
	Close() error
}
