package hotel

import (
	"errors"

	"github.com/warp/rate-engine/rates"
)

// ErrInvalidQuote is returned for malformed quote requests.
var ErrInvalidQuote = errors.New("invalid quote request")

// IsClientError extends rates.IsClientError with catalog-level input errors.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuote) || rates.IsClientError(err)
}

// IsConflict reports a create against an existing ID.
func IsConflict(err error) bool {
	return errors.Is(err, rates.ErrAlreadyExists)
}
