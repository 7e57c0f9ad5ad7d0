package resume

import (
	"errors"
	"fmt"
)

// ErrPresignMissing means the upload-target response omitted the destination
// or the signed fields. That is a hard precondition for the transfer, not
// something to paper over with defaults: the upload never starts.
var ErrPresignMissing = errors.New("upload target response missing destination or fields")

// ErrConfirmRejected means the uploaded-status notification failed after the
// bytes had already landed in storage.
var ErrConfirmRejected = errors.New("upload confirmation rejected")

// ErrDownloadUnavailable means the server answered the download request but
// omitted the address.
var ErrDownloadUnavailable = errors.New("download address unavailable")

// ErrAttemptSuperseded marks a result that arrived for an abandoned attempt.
// It is informational: the newer attempt's state is untouched.
var ErrAttemptSuperseded = errors.New("upload attempt superseded")

// StorageRejectedError is a non-2xx from the object storage target during the
// transfer phase, including an expired or invalid capability.
type StorageRejectedError struct {
	Status int
	Err    error
}

func (e *StorageRejectedError) Error() string {
	return fmt.Sprintf("storage rejected upload (http %d)", e.Status)
}

func (e *StorageRejectedError) Unwrap() error { return e.Err }
