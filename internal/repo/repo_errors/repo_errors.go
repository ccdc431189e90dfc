package repo_errors

import "errors"

var (
	ErrNotFound        = errors.New("entity not found")
	ErrConflict        = errors.New("entity conflicts with existing state")
	ErrAmbiguous       = errors.New("more than one entity matches")
	ErrDuplicateNumber = errors.New("document number is already taken")
)
