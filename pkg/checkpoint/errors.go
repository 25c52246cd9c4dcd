package checkpoint

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrSchemaMismatch      = errors.New("schema mismatch")
	ErrEmptyTable          = errors.New("empty table")
	ErrStoreRead           = errors.New("store read failed")
	ErrStoreWrite          = errors.New("store write failed")
	ErrPartialWrite        = errors.New("partial write")
	ErrNoCurrentCheckpoint = errors.New("no current checkpoint")
)

// PartialWriteError reports a save whose cell updates reached the store
// while the append of new rows did not. The table is left in a mixed state;
// callers should re-read before retrying.
type PartialWriteError struct {
	Updated int // rows updated in place
	Pending int // new rows that were not appended
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: updated %d existing rows but failed to append %d new rows: %v",
		ErrPartialWrite, e.Updated, e.Pending, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Err}
}
