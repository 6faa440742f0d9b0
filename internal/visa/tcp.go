/*
PURPOSE:
  Raw SCPI-over-TCP transport (instrument LAN "SOCKET" mode).

REQUIREMENTS:
  User-specified:
  - Talk to instruments exposing a plain TCP SCPI port (e.g. 5555).

  Implementation-discovered:
  - Replies are single lines terminated by '\n' (sometimes "\r\n").
  - Deadlines map net timeouts onto ErrTimeout.

ARCHITECTURE INTEGRATION:
  - Created by: visa.Dial ("TCPIP::...")

ERROR HANDLING:
  - All failures wrapped in *TransportError. net.Error timeouts unwrap
    to ErrTimeout.

IMPLEMENTATION RULES:
  - One bufio.Reader per connection; never read past the reply line.

USAGE:
  Via visa.Dial.

SELF-HEALING INSTRUCTIONS:
  - If an instrument terminates with '\r' only, extend readLine.

RELATED FILES:
  - internal/visa/visa.go

MAINTENANCE:
  - None expected.
*/

package visa

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

type tcpTransport struct {
	resource string
	conn     net.Conn
	reader   *bufio.Reader
	timeout  time.Duration
	closed   bool
}

func dialTCP(resource, host string, port int, timeout time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), timeout)
	if err != nil {
		return nil, &TransportError{Op: "dial", Resource: resource, Err: err}
	}
	return &tcpTransport{
		resource: resource,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		timeout:  timeout,
	}, nil
}

func (t *tcpTransport) Write(cmd string) error {
	if t.closed {
		return &TransportError{Op: "write", Resource: t.resource, Err: ErrClosed}
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return &TransportError{Op: "write", Resource: t.resource, Err: err}
	}
	if _, err := t.conn.Write([]byte(cmd + "\n")); err != nil {
		return &TransportError{Op: "write", Resource: t.resource, Err: t.classify(err)}
	}
	return nil
}

func (t *tcpTransport) Query(cmd string) (string, error) {
	if err := t.Write(cmd); err != nil {
		return "", err
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return "", &TransportError{Op: "query", Resource: t.resource, Err: err}
	}
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", &TransportError{Op: "query", Resource: t.resource, Err: t.classify(err)}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *tcpTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.conn.Close(); err != nil {
		return &TransportError{Op: "close", Resource: t.resource, Err: err}
	}
	return nil
}

// classify maps net-level timeouts onto the ErrTimeout sentinel.
func (t *tcpTransport) classify(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	return err
}
