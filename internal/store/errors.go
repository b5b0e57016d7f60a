package store

import "errors"

// Sentinel errors returned by the JSON file stores. The HTTP layer maps
// these onto status codes with errors.Is.
var (
	// ErrNotFound reports a missing project, skill, experience entry,
	// job config, or generation record.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a create that collides with an existing id.
	ErrConflict = errors.New("already exists")

	// ErrInvalid reports a payload the store refuses to apply.
	ErrInvalid = errors.New("invalid input")

	// ErrTemplateMissing reports that the job template seed file is gone.
	ErrTemplateMissing = errors.New("job template missing")
)
