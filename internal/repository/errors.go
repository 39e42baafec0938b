package repository

import "errors"

// ErrSectionNotFound is returned when writing rows for a section that does not exist.
var ErrSectionNotFound = errors.New("section not found")
