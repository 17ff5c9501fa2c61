package utils

import "errors"

type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}

// IsPermError reports whether anything in the chain is a PermError
func IsPermError(err error) bool {
	var pe PermError
	return errors.As(err, &pe)
}
