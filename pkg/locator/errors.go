package locator

import "fmt"

// LocatorError is returned when no local IPv4 address can be determined by
// any means. It is the only error that aborts a scan.
type LocatorError struct {
	Reason string
	Err    error
}

func (e *LocatorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not locate local network: %s", e.Reason)
	}
	return fmt.Sprintf("could not locate local network: %s: %s", e.Reason, e.Err)
}

func (e *LocatorError) Unwrap() error {
	return e.Err
}
