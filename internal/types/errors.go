package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidBrandConfig = errors.New("invalid brand config")

	// ErrConfigMalformed is returned when a stored config lacks a required field. It is fatal for the
	// request that read it, never defaulted.
	ErrConfigMalformed = errors.New("brand config malformed")

	// ErrResolution signals a broken remote code lookup (transport failure, non-2xx other than 404,
	// unusable body). It is deliberately distinct from ErrNotFound.
	ErrResolution = errors.New("code resolution error")

	ErrInvalidBackend  = errors.New("invalid backend")
	ErrDataStoreAccess = errors.New("data store read/write error")
)

func Err(typedError error, innerErr error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(typedError, innerErr)
	} else {
		return errors.Join(typedError, innerErr, fmt.Errorf(msgTemplate, args...))
	}
}
