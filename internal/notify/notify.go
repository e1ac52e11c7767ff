// Package notify builds and sends the movement notification emails to
// the IT service inbox. Sending is best effort: callers downgrade
// failures to warnings.
package notify

import "fmt"

// NotificationError reports a failure to build or deliver a movement
// email. Op distinguishes rendering from delivery problems.
type NotificationError struct {
	Op  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s: %v", e.Op, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// TransportError is an SMTP-level delivery failure, as opposed to a
// malformed message.
type TransportError struct {
	Host string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.Host, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
