package domain

import "errors"

var (
	// ErrNotFound is returned when a bucket, object, database or table does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a create call targets an existing resource.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNotEmpty is returned when deleting a bucket that still holds objects.
	ErrNotEmpty = errors.New("bucket is not empty")

	// ErrNoSubmission is returned when polling or fetching a job that was never submitted.
	ErrNoSubmission = errors.New("query was not submitted")

	// ErrQueryNotSucceeded is returned when fetching results of a query that did not succeed.
	ErrQueryNotSucceeded = errors.New("query results are only available after SUCCEEDED")

	// ErrQueryTimeout is returned when a query does not reach a terminal state before the deadline.
	ErrQueryTimeout = errors.New("query did not complete before the deadline")

	// ErrRunLocked is returned when another run holds the lock for the same bucket.
	ErrRunLocked = errors.New("another run is in progress for this bucket")

	// ErrMissingConfig is returned when a required configuration key is unset.
	ErrMissingConfig = errors.New("missing required configuration")
)
