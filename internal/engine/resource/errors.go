package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailure matches every *LoadError.
	ErrLoadFailure = errors.New("resource load failed")
	// ErrNotCached is returned by Release for keys with no live entry.
	ErrNotCached = errors.New("resource not cached")
)

// LoadError reports a failed load. The cache holds no entry for Key
// afterwards.
type LoadError struct {
	Kind string
	Key  Key
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s %s: %v", e.Kind, e.Key.Short(), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoadFailure }
