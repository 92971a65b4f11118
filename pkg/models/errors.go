package models

import "errors"

// ErrNotFound is returned when a requested item is not found.
// Storage implementations wrap this error when an item doesn't exist.
var ErrNotFound = errors.New("not found")

// ErrNilRules is returned when classification is attempted without a rule set.
var ErrNilRules = errors.New("rule set is nil")

// ErrEmptyInput is returned by callers that require non-empty input
// (AI prompts, uploads). The classifier itself never returns it.
var ErrEmptyInput = errors.New("input is empty")
