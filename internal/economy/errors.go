package economy

import "errors"

var (
	// ErrInvalidArgument is returned for precondition violations such as a
	// non-positive key-to-scrap ratio or an out-of-range forgiveness value.
	// These always fail fast and are never silently clamped.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotVisible is returned when a price or listing representation is
	// requested from a listing that lacks the fields needed to compute one.
	ErrNotVisible = errors.New("listing not visible")

	// ErrNotFound is returned by catalog lookups for items without an entry.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedCurrency is returned when a catalog entry is priced in a
	// currency other than keys or metal.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrMalformedData is returned when an external document is missing an
	// expected field.
	ErrMalformedData = errors.New("malformed data")
)
