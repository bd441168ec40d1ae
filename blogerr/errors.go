package blogerr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested blog record does not exist.
var ErrNotFound = errors.New("blog: record not found")

// ErrDecode indicates an embedded image carried malformed base64 data.
// The extractor skips the offending tag and keeps going.
var ErrDecode = errors.New("image: malformed base64 payload")

// StorageWriteError wraps a failed filesystem write for an image file.
// Callers degrade gracefully: the base64 payload stays in the content.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("image: write %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
