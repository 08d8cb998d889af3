// Provides common filesysdb error definitions.
package filesysdb_errors

import "errors"

var (
	ErrNotFound         = errors.New("filesysdb: no such object")
	ErrMissingId        = errors.New("filesysdb: record has no id field")
	ErrDuplicateKey     = errors.New("filesysdb: unique index constraint violation")
	ErrNoSuchIndex      = errors.New("filesysdb: no index on those fields")
	ErrNoSuchCollection = errors.New("filesysdb: unknown collection")
	ErrCorrupt          = errors.New("filesysdb: stored bytes do not decode")
	ErrClosed           = errors.New("filesysdb: registry is closed")
)
