package charts

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChartID is returned when a slot would be registered without a label
	ErrEmptyChartID = errors.New("chart id must not be empty")
	// ErrNilValue is returned when interval membership is checked for a missing value
	ErrNilValue = errors.New("timeseries value must not be nil")
	// ErrMissingTimeseries is returned when a requested series carries no data
	ErrMissingTimeseries = errors.New("timeseries data missing")
	// ErrDuplicateSeries is returned when one series id is requested twice
	ErrDuplicateSeries = errors.New("timeseries requested twice")
)

// ConfigurationError reports a slot that cannot be configured
type ConfigurationError struct {
	SeriesID    string
	ReferenceID string // empty for primary slots
	Index       int
	Err         error
}

func (e *ConfigurationError) Error() string {
	if e.ReferenceID != "" {
		return fmt.Sprintf("cannot configure slot %d for reference %q of %q: %v", e.Index, e.ReferenceID, e.SeriesID, e.Err)
	}
	return fmt.Sprintf("cannot configure slot %d for %q: %v", e.Index, e.SeriesID, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
