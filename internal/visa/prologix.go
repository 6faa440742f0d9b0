/*
PURPOSE:
  GPIB transport via a Prologix GPIB-USB controller on a virtual COM port.

REQUIREMENTS:
  User-specified:
  - Talk to the QT-7600 on its GPIB address through a Prologix adapter.

  Implementation-discovered:
  - gotmc/prologix already handles addressing, read-after-write and the
    ++ escape protocol; this file only adapts it to the Transport interface.

ARCHITECTURE INTEGRATION:
  - Created by: visa.Dial ("PROLOGIX::...")
  - Dependencies: github.com/gotmc/prologix, github.com/gotmc/prologix/driver/vcp

ERROR HANDLING:
  - Controller errors wrapped in *TransportError.

IMPLEMENTATION RULES:
  - Return front-panel (local) control on Close, then flush and close
    the serial port.

USAGE:
  Via visa.Dial ("PROLOGIX::/dev/ttyUSB0::10").

SELF-HEALING INSTRUCTIONS:
  - If the controller answers garbage, check the ++mode/++auto state with
    a terminal before suspecting this code.

RELATED FILES:
  - internal/visa/visa.go

MAINTENANCE:
  - None expected.
*/

package visa

import (
	"strings"
	"time"

	"github.com/gotmc/prologix"
	"github.com/gotmc/prologix/driver/vcp"
)

type prologixTransport struct {
	resource string
	port     *vcp.VCP
	gpib     *prologix.Controller
	closed   bool
}

func dialPrologix(resource, device string, pad int, timeout time.Duration) (Transport, error) {
	port, err := vcp.NewVCP(device)
	if err != nil {
		return nil, &TransportError{Op: "dial", Resource: resource, Err: err}
	}

	gpib, err := prologix.NewController(port, pad, true)
	if err != nil {
		port.Close()
		return nil, &TransportError{Op: "dial", Resource: resource, Err: err}
	}

	return &prologixTransport{
		resource: resource,
		port:     port,
		gpib:     gpib,
	}, nil
}

func (t *prologixTransport) Write(cmd string) error {
	if t.closed {
		return &TransportError{Op: "write", Resource: t.resource, Err: ErrClosed}
	}
	if err := t.gpib.Command(cmd); err != nil {
		return &TransportError{Op: "write", Resource: t.resource, Err: err}
	}
	return nil
}

func (t *prologixTransport) Query(cmd string) (string, error) {
	if t.closed {
		return "", &TransportError{Op: "query", Resource: t.resource, Err: ErrClosed}
	}
	reply, err := t.gpib.Query(cmd)
	if err != nil {
		return "", &TransportError{Op: "query", Resource: t.resource, Err: err}
	}
	return strings.TrimRight(reply, "\r\n"), nil
}

func (t *prologixTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	// Hand the instrument back to its front panel before dropping the port.
	if err := t.gpib.FrontPanel(true); err != nil {
		t.port.Close()
		return &TransportError{Op: "close", Resource: t.resource, Err: err}
	}
	if err := t.port.Flush(); err != nil {
		t.port.Close()
		return &TransportError{Op: "close", Resource: t.resource, Err: err}
	}
	if err := t.port.Close(); err != nil {
		return &TransportError{Op: "close", Resource: t.resource, Err: err}
	}
	return nil
}
