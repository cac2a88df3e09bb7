package observation

import "errors"

var (
	// ErrMissingURL is returned when an observation has no page URL.
	ErrMissingURL = errors.New("observation has no url")

	// ErrEmptyDocument is returned when an HTML snapshot has no
	// parseable content.
	ErrEmptyDocument = errors.New("html document is empty")
)
