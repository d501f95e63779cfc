package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrLookupFailed matches every LookupFailedError via errors.Is.
	ErrLookupFailed = errors.New("cart: lookup failed")
	// ErrLineNotFound is returned for a line index outside the cart.
	ErrLineNotFound = errors.New("cart: line not found")

	// ErrCatalogUnavailable wraps catalog failures other than a missing code.
	ErrCatalogUnavailable = errors.New("cart: catalog unavailable")
)

// LookupFailedError reports a scanned code that is not in the catalog.
type LookupFailedError struct {
	Code string
}

func (e *LookupFailedError) Error() string {
	return fmt.Sprintf("cart: code %q not found in catalog", e.Code)
}

// Unwrap lets errors.Is match ErrLookupFailed.
func (e *LookupFailedError) Unwrap() error { return ErrLookupFailed }

// Notice is the operator-facing message for the failed scan.
func (e *LookupFailedError) Notice() string {
	return fmt.Sprintf("Barcode %s not found in database.", e.Code)
}
