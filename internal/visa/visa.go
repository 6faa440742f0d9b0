/*
PURPOSE:
  Transport abstraction for talking SCPI to an instrument.
  Maps VISA-style resource strings to a concrete transport backend.

REQUIREMENTS:
  User-specified:
  - The instrument facade must only depend on write/query/close.
  - Support GPIB (Prologix controller), serial, and raw TCP sockets.

  Implementation-discovered:
  - Resource strings follow the VISA convention ("::"-separated fields) so
    existing lab configs carry over unchanged.
  - Transport failures must be distinguishable from protocol-level parse
    failures, so all backends report *TransportError.

ARCHITECTURE INTEGRATION:
  - Used by: internal/qt7600 (injected), internal/engine (via qt7600.Open)
  - Implemented by: tcp.go, serial.go, prologix.go

ERROR HANDLING:
  - Every backend failure is wrapped in *TransportError with the operation
    and resource attached. Timeouts unwrap to ErrTimeout.
  - No retries at this layer. A failed exchange is reported immediately.

IMPLEMENTATION RULES:
  - Transports are not safe for concurrent use; callers serialize.
  - One command per exchange, newline terminated, replies trimmed of CR/LF.

USAGE:
  tr, err := visa.Dial("TCPIP::192.168.1.5::5555::SOCKET", visa.Options{Timeout: 5 * time.Second})

SELF-HEALING INSTRUCTIONS:
  - New backends register a case in Dial.

RELATED FILES:
  - internal/qt7600/qt7600.go

MAINTENANCE:
  - Update the resource grammar comment when adding schemes.
*/

package visa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transport is the injected capability the instrument facade drives.
// Implementations block until the exchange completes or times out.
type Transport interface {
	// Write sends a command that expects no reply.
	Write(cmd string) error
	// Query sends a command and returns the single-line reply, trimmed
	// of the trailing line terminator.
	Query(cmd string) (string, error)
	// Close releases the underlying connection. Safe to call twice.
	Close() error
}

// Sentinel errors. Backends wrap these inside *TransportError so callers
// can test with errors.Is.
var (
	ErrNotOpen = errors.New("visa: session not open")
	ErrClosed  = errors.New("visa: session closed")
	ErrTimeout = errors.New("visa: read timeout")
)

// TransportError reports a failed exchange with the instrument.
type TransportError struct {
	Op       string // "dial", "write", "query", "close"
	Resource string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("visa %s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("visa %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Options holds dial parameters shared by all backends.
type Options struct {
	// Timeout bounds a single query exchange. Zero means DefaultTimeout.
	Timeout time.Duration

	// SerialBaud applies to ASRL and PROLOGIX resources. Zero means
	// DefaultSerialBaud.
	SerialBaud int
}

const (
	DefaultTimeout    = 5 * time.Second
	DefaultSerialBaud = 9600
)

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) baud() int {
	if o.SerialBaud <= 0 {
		return DefaultSerialBaud
	}
	return o.SerialBaud
}

// Dial opens a transport for a VISA-style resource string:
//
//	TCPIP::<host>::<port>::SOCKET   raw SCPI-over-TCP socket
//	ASRL::<device>                  serial port (e.g. ASRL::/dev/ttyUSB0)
//	PROLOGIX::<device>::<pad>       GPIB via a Prologix USB controller at
//	                                primary address <pad>
func Dial(resource string, opts Options) (Transport, error) {
	fields := strings.Split(resource, "::")
	scheme := strings.ToUpper(strings.TrimSpace(fields[0]))

	switch scheme {
	case "TCPIP":
		if len(fields) < 3 {
			return nil, &TransportError{Op: "dial", Resource: resource,
				Err: errors.New("TCPIP resource needs host and port")}
		}
		port, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, &TransportError{Op: "dial", Resource: resource,
				Err: fmt.Errorf("bad TCP port %q", fields[2])}
		}
		return dialTCP(resource, fields[1], port, opts.timeout())

	case "ASRL":
		if len(fields) < 2 || fields[1] == "" {
			return nil, &TransportError{Op: "dial", Resource: resource,
				Err: errors.New("ASRL resource needs a device path")}
		}
		return dialSerial(resource, fields[1], opts.baud(), opts.timeout())

	case "PROLOGIX":
		if len(fields) < 3 {
			return nil, &TransportError{Op: "dial", Resource: resource,
				Err: errors.New("PROLOGIX resource needs device path and GPIB address")}
		}
		pad, err := strconv.Atoi(fields[2])
		if err != nil || pad < 0 || pad > 30 {
			return nil, &TransportError{Op: "dial", Resource: resource,
				Err: fmt.Errorf("bad GPIB primary address %q", fields[2])}
		}
		return dialPrologix(resource, fields[1], pad, opts.timeout())

	default:
		return nil, &TransportError{Op: "dial", Resource: resource,
			Err: fmt.Errorf("unsupported resource scheme %q", scheme)}
	}
}
