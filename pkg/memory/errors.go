package memory

import "errors"

// ErrNotFound is returned when no record exists for a document id.
var ErrNotFound = errors.New("document not found")

// ErrNoCitation is returned when a citation query does not occur in a
// record's retained raw text.
var ErrNoCitation = errors.New("no citation found")
