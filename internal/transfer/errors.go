package transfer

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnauthenticated means there is no usable credential for the request,
// either because none is stored or because the server rejected the one we sent.
// Callers should point the user at login instead of retrying.
var ErrUnauthenticated = errors.New("not authenticated")

// NetworkError wraps a transport-level failure (DNS, TCP, timeout). The
// request may never have reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from a JSON API endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("http %d: %s", e.Status, detail)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Detail extracts a human-readable message from the error body. The backends
// disagree on the field name, so a few well-known keys are probed.
func (e *HTTPError) Detail() string {
	for _, key := range []string{"detail", "message", "error"} {
		if v := gjson.Get(e.Body, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// UploadError is a non-2xx response from the object storage target. The raw
// body is kept as-is: storage errors are typically XML and the original text
// is the only useful diagnostic.
type UploadError struct {
	Status  int
	RawBody string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("storage rejected upload: http %d", e.Status)
}
