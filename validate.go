package nmtools

import "go.uber.org/zap"

/*
===============================================================================
    Validation
===============================================================================
*/

// Status is the outcome of validating a raw data file
type Status int

const (
	// StatusGood means the payload reconciles with its header
	StatusGood Status = iota
	// StatusBad means the file was read but failed reconciliation
	StatusBad
	// StatusIOError means the file could not be opened at all
	StatusIOError
)

// ValidateFile checks `src` as a raw data container from any supported
// vendor, falling back to a headerless .ptd scan when no container
// signature matches
func ValidateFile(src string, log *zap.SugaredLogger) Status {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if c, err := OpenContainer(src, log); err == nil {
		if ok, err := c.IsValid(); err == nil && ok {
			return StatusGood
		}
	}
	log.Infof("Trying as PTD...")
	return ValidatePTD(src, log)
}
