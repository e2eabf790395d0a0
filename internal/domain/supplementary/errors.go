package supplementary

import "errors"

var (
	ErrDayNotFound     = errors.New("supplementary day not found")
	ErrAlreadyReviewed = errors.New("supplementary day has already been reviewed")
)
