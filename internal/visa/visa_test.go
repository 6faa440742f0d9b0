package visa

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func TestDialRejectsBadResources(t *testing.T) {
	cases := []string{
		"GPIB0::10::INSTR", // NI-VISA scheme, not supported
		"TCPIP::hostonly",
		"TCPIP::host::notaport::SOCKET",
		"ASRL",
		"PROLOGIX::/dev/ttyUSB0",
		"PROLOGIX::/dev/ttyUSB0::99",
		"",
	}

	for _, res := range cases {
		_, err := Dial(res, Options{})
		if err == nil {
			t.Errorf("Dial(%q) should fail", res)
			continue
		}
		if !IsTransportError(err) {
			t.Errorf("Dial(%q): want TransportError, got %T", res, err)
		}
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	te := &TransportError{Op: "query", Resource: "TCPIP::x::5555::SOCKET", Err: ErrTimeout}
	if !errors.Is(te, ErrTimeout) {
		t.Error("TransportError should unwrap to its cause")
	}
	if !strings.Contains(te.Error(), "TCPIP::x::5555::SOCKET") {
		t.Errorf("message should carry the resource: %q", te.Error())
	}
}

// scpiEcho serves one connection, answering *IDN? and echoing back the
// last CONF value for CONF:...? queries.
func scpiEcho(t *testing.T, ln net.Listener, idn string) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	state := make(map[string]string)
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		switch {
		case cmd == "*IDN?":
			conn.Write([]byte(idn + "\r\n"))
		case strings.HasSuffix(cmd, "?"):
			conn.Write([]byte(state[strings.TrimSuffix(cmd, "?")] + "\n"))
		default:
			if header, value, ok := strings.Cut(cmd, " "); ok {
				state[header] = value
			}
		}
	}
}

func TestTCPTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go scpiEcho(t, ln, "QuadTech,7600modelb,0,V0")

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	resource := "TCPIP::" + host + "::" + port + "::SOCKET"

	tr, err := Dial(resource, Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer tr.Close()

	idn, err := tr.Query("*IDN?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if idn != "QuadTech,7600modelb,0,V0" {
		t.Errorf("idn = %q", idn)
	}

	if err := tr.Write("CONF:FREQ 1000.00"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	freq, err := tr.Query("CONF:FREQ?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if freq != "1000.00" {
		t.Errorf("freq = %q, want 1000.00", freq)
	}
}

func TestTCPQueryTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	// Accept but never reply.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	tr, err := Dial("TCPIP::"+host+"::"+port+"::SOCKET", Options{Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer tr.Close()

	_, err = tr.Query("*STB?")
	if err == nil {
		t.Fatal("expected timeout")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("want ErrTimeout, got %v", err)
	}
	if !IsTransportError(err) {
		t.Errorf("want TransportError, got %T", err)
	}
}

func TestTCPCloseIdempotent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	tr, err := Dial("TCPIP::"+host+"::"+port+"::SOCKET", Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}

	if err := tr.Write("*RST"); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close: want ErrClosed, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if o.timeout() != DefaultTimeout {
		t.Errorf("timeout() = %v, want %v", o.timeout(), DefaultTimeout)
	}
	if o.baud() != DefaultSerialBaud {
		t.Errorf("baud() = %d, want %d", o.baud(), DefaultSerialBaud)
	}
}
