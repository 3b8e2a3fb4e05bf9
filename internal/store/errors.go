package store

import (
	"github.com/e-radio/eradio/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StoreError("could not open state database").Build()

	// ErrInitializeSchemaFailed indicates the schema could not be created.
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize state schema").Build()

	// ErrWriteFailed indicates an insert or update failed.
	ErrWriteFailed = errors.StoreError("failed to write state").Build()

	// ErrQueryFailed indicates a read failed.
	ErrQueryFailed = errors.StoreError("failed to query state").Build()
)
