package repositories

import "fmt"

type errorCode int

const (
	codeNotFound errorCode = iota
	codeCorrupt
	codeUnavailable
)

type repositoryError struct {
	code errorCode
	op   string
	err  error
}

func (e *repositoryError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("repository: %s: %v", e.op, e.err)
	}
	return fmt.Sprintf("repository: %s", e.op)
}

func (e *repositoryError) Unwrap() error       { return e.err }
func (e *repositoryError) IsNotFound() bool    { return e.code == codeNotFound }
func (e *repositoryError) IsCorrupt() bool     { return e.code == codeCorrupt }
func (e *repositoryError) IsUnavailable() bool { return e.code == codeUnavailable }

// NewNotFoundError marks the absence of a persisted record.
func NewNotFoundError(op string, err error) RepositoryError {
	return &repositoryError{code: codeNotFound, op: op, err: err}
}

// NewCorruptError marks a snapshot that exists but cannot be decoded.
func NewCorruptError(op string, err error) RepositoryError {
	return &repositoryError{code: codeCorrupt, op: op, err: err}
}

// NewUnavailableError marks a backend failure unrelated to the record itself.
func NewUnavailableError(op string, err error) RepositoryError {
	return &repositoryError{code: codeUnavailable, op: op, err: err}
}
