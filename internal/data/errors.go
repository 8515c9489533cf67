package data

import "errors"

// Shared argument-validation sentinels for data-layer repositories.
var (
	ErrOrgIDRequired = errors.New("org id is required")
	ErrRunIDRequired = errors.New("run id is required")
)
