package csvload

import "errors"

var (
	// ErrInvalidBatchSize indicates a batch size of zero or less.
	ErrInvalidBatchSize = errors.New("csvload: batch size must be positive")

	// ErrEmptySource indicates the source contains no header record.
	ErrEmptySource = errors.New("csvload: source has no header record")
)
