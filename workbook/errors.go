// ABOUTME: Backend error taxonomy
// ABOUTME: Wraps transport/API failures so callers can test them with errors.Is
package workbook

import (
	"errors"
	"fmt"
)

var (
	// ErrRemote marks any failed backend call (network, quota, permission, storage).
	ErrRemote = errors.New("remote call failed")

	// ErrConflict marks a structural change that collides with existing state,
	// such as adding a tab whose title is already taken.
	ErrConflict = errors.New("conflicting structural change")
)

// RemoteError wraps a backend failure with the call that produced it.
type RemoteError struct {
	Call     string
	Err      error
	Conflict bool
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Call, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	if target == ErrRemote {
		return true
	}
	return e.Conflict && target == ErrConflict
}

// Remote wraps err as a RemoteError. A nil err stays nil.
func Remote(call string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Call: call, Err: err}
}

// Conflict wraps err as a RemoteError that also matches ErrConflict.
func Conflict(call string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Call: call, Err: err, Conflict: true}
}
