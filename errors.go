package nmtools

import "fmt"

/*
===============================================================================
    Errors
===============================================================================
*/

// NotRawData is an error indicating that the input is not recognised as a
// PET raw data container
type NotRawData struct {
	error
}

// UnsupportedRawData is an error indicating that the input is recognised
// but carries no data this package can unpack
type UnsupportedRawData struct {
	error
}

// CorruptContainer is an error indicating that a recognised container
// could not be read in full
type CorruptContainer struct {
	error
}

// NotRawDataError raises a `NotRawData` error
func NotRawDataError(format string, a ...interface{}) *NotRawData {
	return &NotRawData{fmt.Errorf(format, a...)}
}

// UnsupportedRawDataError raises an `UnsupportedRawData` error
func UnsupportedRawDataError(format string, a ...interface{}) *UnsupportedRawData {
	return &UnsupportedRawData{fmt.Errorf(format, a...)}
}

// CorruptContainerError raises a `CorruptContainer` error
func CorruptContainerError(format string, a ...interface{}) *CorruptContainer {
	return &CorruptContainer{fmt.Errorf(format, a...)}
}
