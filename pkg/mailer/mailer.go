// Package mailer provides the outbound email capability. The rest of the
// application only depends on the Sender interface; delivery mechanics stay
// behind it.
package mailer

import "errors"

// ErrDelivery is returned when the transport accepted the message but could
// not deliver it. Callers treat it as a recoverable, best-effort failure.
var ErrDelivery = errors.New("email delivery failed")

// Sender sends a single HTML email
type Sender interface {
	Send(to, subject, htmlBody string) error
}
