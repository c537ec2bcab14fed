package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrDataQuality          = errors.New("data quality")
)

// WrapError preserves typed semantic errors with the failing stage as context.
func WrapError(kind error, stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", stage, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
