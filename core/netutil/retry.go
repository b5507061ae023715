package netutil

import (
	"errors"
	"net"
)

// ShouldRetry reports whether err is a transport failure worth another
// attempt. Only failures that happen before a request reaches the server
// qualify (refused dials, temporary DNS errors) plus timeouts. Errors that
// arrive mid-exchange are left alone since the request may have been acted on.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	// url.Error and net.OpError both unwrap, so errors.As reaches the cause.
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
