package repositories

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrConditionFailed = errors.New("conditional update failed")
)

// maxVersionRetries bounds optimistic read-modify-write loops on list columns.
const maxVersionRetries = 5
