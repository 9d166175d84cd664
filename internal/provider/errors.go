package provider

import (
	"errors"
	"fmt"

	"github.com/neexbeast/skycast/internal/weather"
)

// ErrDecoding is returned when a 2xx body does not decode.
var ErrDecoding = weather.ErrDecode

// ErrUnknown covers failures with no HTTP response to classify.
var ErrUnknown = errors.New("unknown error")

// TransportFailure is the StatusError code used when a transport error
// carries no system error number.
const TransportFailure = -1

// StatusError carries a non-2xx HTTP status or a transport error code.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - error code from API", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode extracts the code from a *StatusError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
