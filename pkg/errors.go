package spectra

import (
	"errors"
	"fmt"
)

var (
	errEmptyDataset = errors.New("dataset is empty")
	errNot2d        = errors.New("dataset is not 2-dimensional")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

// ErrReadDataset represents an error when reading a dataset from a raw file.
type ErrReadDataset struct {
	Path string
	Err  error
}

func (e *ErrReadDataset) Error() string {
	return fmt.Sprintf("error reading dataset %q: %v", e.Path, e.Err)
}

// ErrRunFilename represents an error when a raw file name does not follow
// the Run_<run>_<sequence>.h5 convention.
type ErrRunFilename struct {
	Filename string
}

func (e *ErrRunFilename) Error() string {
	return fmt.Sprintf("file name %q does not match Run_<run>_<seq>.h5", e.Filename)
}

// ErrGating represents an error when splitting shots into foreground
// and background.
type ErrGating struct {
	Period int64
	Reason string
}

func (e *ErrGating) Error() string {
	return fmt.Sprintf("gating error (period %d): %s", e.Period, e.Reason)
}

// ErrCalibration represents an error when fitting the energy calibration.
type ErrCalibration struct {
	Reason string
	Err    error
}

func (e *ErrCalibration) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calibration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("calibration error: %s", e.Reason)
}

// ErrRebin represents an error when rebinning a spectrum onto a new axis.
type ErrRebin struct {
	Reason string
}

func (e *ErrRebin) Error() string {
	return fmt.Sprintf("rebin error: %s", e.Reason)
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}
