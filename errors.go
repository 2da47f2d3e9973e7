package cloudcity

import "errors"

var (
	// ErrInvalidPath is returned when a logical path is malformed or escapes the root
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotFound is returned when a file or directory does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotAFile is returned when an operation needs a regular file but got a directory or nothing
	ErrNotAFile = errors.New("not a file")
	// ErrPermissionDenied is returned when the OS rejects the operation
	ErrPermissionDenied = errors.New("permission denied")
	// ErrMalformedRequest is returned when an upload body is not valid multipart/form-data
	ErrMalformedRequest = errors.New("malformed request")
	// ErrIO is returned when reading or writing the filesystem fails
	ErrIO = errors.New("i/o error")
)
