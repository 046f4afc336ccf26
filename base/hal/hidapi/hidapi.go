// Package hidapi implements the [hal.Transport] interface on top of
// hidapi via github.com/sstallion/go-hid.
//
// hidapi drives the exact wire format the base station expects: output
// reports are delivered as HID SET_REPORT control transfers
// (0x21, 0x09, 0x0200, 0x0000) and input reports are read from the
// interrupt-in endpoint. It also handles kernel-driver detachment, so no
// enumeration or configuration logic is needed here.
package hidapi

import (
	"fmt"
	"time"

	hid "github.com/sstallion/go-hid"

	"github.com/openpoll/iclickerpoll/base/hal"
	"github.com/openpoll/iclickerpoll/frame"
	"github.com/openpoll/iclickerpoll/pkg"
)

// Device is a hidapi-backed transport to an iClicker base station.
type Device struct {
	dev *hid.Device
}

var _ hal.Transport = (*Device)(nil)

// Open finds the first attached base station and opens it. It returns
// pkg.ErrDeviceNotFound if no matching device is present.
func Open() (*Device, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidapi init: %w", err)
	}

	dev, err := hid.OpenFirst(hal.VendorID, hal.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w (vid %#04x pid %#04x): %v",
			pkg.ErrDeviceNotFound, hal.VendorID, hal.ProductID, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "base station opened",
		"vid", hal.VendorID,
		"pid", hal.ProductID)

	return &Device{dev: dev}, nil
}

// Send writes one frame as an output report. hidapi requires the report
// number as a leading byte; the base station uses unnumbered reports, so
// it is always zero and not part of the frame.
func (d *Device) Send(f frame.Frame) error {
	buf := make([]byte, 1+frame.Size)
	copy(buf[1:], f.Bytes())
	if _, err := d.dev.Write(buf); err != nil {
		return fmt.Errorf("hid write: %w", err)
	}
	pkg.LogDebug(pkg.ComponentHAL, "sent", "frame", f.String())
	return nil
}

// Receive reads one input report, blocking up to timeout. A zero-length
// read means the device stayed silent and maps to pkg.ErrTimeout.
func (d *Device) Receive(timeout time.Duration) (frame.Frame, error) {
	buf := make([]byte, frame.Size)
	n, err := d.dev.ReadWithTimeout(buf, timeout)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("hid read: %w", err)
	}
	if n == 0 {
		return frame.Frame{}, pkg.ErrTimeout
	}
	f := frame.New(buf[:n])
	pkg.LogDebug(pkg.ComponentHAL, "received", "frame", f.String())
	return f, nil
}

// Close releases the device handle and shuts hidapi down.
func (d *Device) Close() error {
	if d.dev == nil {
		return pkg.ErrClosed
	}
	err := d.dev.Close()
	d.dev = nil
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	return err
}
