package httpclient

import (
	"errors"
	"fmt"

	"github.com/status-im/rest-executor/models"
)

// ErrNoResult is returned by ExecuteWithRetry when no attempt succeeded
var ErrNoResult = errors.New("no result")

// TransportError reports the failure of a single command attempt
type TransportError struct {
	Op         string // "build", "send" or "status"
	Method     models.Method
	URL        string
	StatusCode int    // set when Op is "status"
	Body       string // response body of a failed status, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s failed: %v", e.Method, e.URL, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
