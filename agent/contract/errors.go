package contract

import "errors"

var (
	ErrModelInvoke = errors.New("model invoke failed")
	ErrValidation  = errors.New("validation failed")
	ErrRepository  = errors.New("repository operation failed")
	ErrNotFound    = errors.New("record not found")
	ErrUnknownTool = errors.New("unknown tool")
)
