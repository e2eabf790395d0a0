package punch

import "errors"

// Punch domain errors
var (
	ErrPunchNotFound    = errors.New("punch record not found")
	ErrAlreadyCorrected = errors.New("punch has already been corrected")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrInvalidDeviceKey = errors.New("invalid device api key")
	ErrEmployeeUnknown  = errors.New("employee not found for punch")
)
