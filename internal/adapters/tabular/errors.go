package tabular

import "errors"

// Sentinel kinds for export reading errors.
var (
	ErrOpenInput    = errors.New("open input failed")
	ErrEmptyInput   = errors.New("input has no header row")
	ErrMalformedCSV = errors.New("malformed csv")
)
