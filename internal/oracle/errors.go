package oracle

import (
	"errors"
	"fmt"
)

// TransportError is a transient transport-level failure: rate limiting or a
// server-side error. The pipeline degrades on it like on any other failure;
// the type exists so callers and logs can tell what kind of failure it was.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transient api error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsTransient reports whether err is a transient transport failure.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
