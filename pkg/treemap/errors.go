package treemap

import (
	"errors"
	"fmt"
)

// ErrNoDatasets indicates a request without any dataset.
var ErrNoDatasets = errors.New("no datasets requested")

// IngestionError reports a dataset that could not be resolved or parsed.
// No partial dataset is used when it occurs.
type IngestionError struct {
	Dataset string
	Err     error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("unable to load dataset %q: %v", e.Dataset, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError creates a new IngestionError.
func NewIngestionError(dataset string, err error) *IngestionError {
	return &IngestionError{
		Dataset: dataset,
		Err:     err,
	}
}
