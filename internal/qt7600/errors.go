/*
PURPOSE:
  Protocol-level error type for the QT-7600 facade.
  Distinguishes "the reply did not match the expected shape" from
  transport failures (visa.TransportError).

REQUIREMENTS:
  User-specified:
  - Two error kinds only: transport and protocol. Both propagate
    unmodified to the caller, no retries, no suppression.

ARCHITECTURE INTEGRATION:
  - Used by: internal/qt7600, internal/engine, internal/cli.

ERROR HANDLING:
  - errors.As finds *ProtocolError through pkg/errors wrapping.

IMPLEMENTATION RULES:
  - Keep the offending command and reply attached for diagnostics.

USAGE:
  if qt7600.IsProtocolError(err) { ... }

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/visa/visa.go (the transport error counterpart)

MAINTENANCE:
  - None expected.
*/

package qt7600

import (
	"errors"
	"fmt"
)

// ProtocolError reports an instrument reply that did not match the
// expected shape for the command that was issued.
type ProtocolError struct {
	Command string
	Reply   string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("qt7600: bad reply to %q: %s (reply %q)", e.Command, e.Reason, e.Reply)
}

// IsProtocolError reports whether err is (or wraps) a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
