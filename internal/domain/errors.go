package domain

import "errors"

// ErrTimeseriesNotFound is returned by measurement sources for unknown series ids
var ErrTimeseriesNotFound = errors.New("timeseries not found")
