/*
PURPOSE:
  Serial (RS-232/USB-serial) transport for instruments on ASRL resources.

REQUIREMENTS:
  User-specified:
  - Talk to the QT-7600 over its rear-panel RS-232 port.

  Implementation-discovered:
  - tarm/serial ReadTimeout applies per Read call, so the reply is
    accumulated byte-wise until the terminator or an overall deadline.

ARCHITECTURE INTEGRATION:
  - Created by: visa.Dial ("ASRL::...")
  - Dependencies: github.com/tarm/serial

ERROR HANDLING:
  - A reply that does not complete within the deadline is ErrTimeout
    wrapped in *TransportError.

IMPLEMENTATION RULES:
  - 8N1 framing; baud comes from Options.

USAGE:
  Via visa.Dial.

SELF-HEALING INSTRUCTIONS:
  - If the port wedges mid-reply, power-cycle the adapter; no reconnect
    logic lives here.

RELATED FILES:
  - internal/visa/visa.go

MAINTENANCE:
  - None expected.
*/

package visa

import (
	"time"

	"github.com/tarm/serial"
)

type serialTransport struct {
	resource string
	port     *serial.Port
	timeout  time.Duration
	closed   bool
}

func dialSerial(resource, device string, baud int, timeout time.Duration) (Transport, error) {
	// Short per-Read timeout so the accumulate loop can enforce the
	// overall deadline itself.
	cfg := &serial.Config{
		Name:        device,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 100 * time.Millisecond,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, &TransportError{Op: "dial", Resource: resource, Err: err}
	}
	return &serialTransport{
		resource: resource,
		port:     port,
		timeout:  timeout,
	}, nil
}

func (t *serialTransport) Write(cmd string) error {
	if t.closed {
		return &TransportError{Op: "write", Resource: t.resource, Err: ErrClosed}
	}
	if _, err := t.port.Write([]byte(cmd + "\n")); err != nil {
		return &TransportError{Op: "write", Resource: t.resource, Err: err}
	}
	return nil
}

func (t *serialTransport) Query(cmd string) (string, error) {
	if err := t.Write(cmd); err != nil {
		return "", err
	}

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, 128)
	var line []byte

	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if b == '\n' {
					return trimReply(line), nil
				}
				line = append(line, b)
			}
		}
		if err != nil && n == 0 {
			// tarm/serial reports io.EOF on a timed-out Read.
			if time.Now().After(deadline) {
				return "", &TransportError{Op: "query", Resource: t.resource, Err: ErrTimeout}
			}
			continue
		}
		if time.Now().After(deadline) {
			return "", &TransportError{Op: "query", Resource: t.resource, Err: ErrTimeout}
		}
	}
}

func (t *serialTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return &TransportError{Op: "close", Resource: t.resource, Err: err}
	}
	return nil
}

func trimReply(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\r' || b[len(b)-1] == '\n') {
		b = b[:len(b)-1]
	}
	return string(b)
}
