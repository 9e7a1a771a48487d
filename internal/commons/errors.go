package commons

import "errors"

// Store-level sentinels. Repositories translate their backend's failure modes
// into these two; everything above the repository layer matches on them with
// errors.Is.
var ErrRecordNotFound = errors.New("record not found")

// ErrConflict reports that a record was inserted or modified concurrently
// between read and write. Callers retry the whole operation from fresh reads.
var ErrConflict = errors.New("record modified concurrently")
