package service

import "fmt"

// PartialWriteError reports that a multi-document operation got its first
// write through but a dependent write failed. The store has no cross-document
// transactions, so the caller must be able to see exactly which half is
// missing and retry that half instead of re-running the whole operation and
// duplicating the first write.
type PartialWriteError struct {
	Op      string // operation that was interrupted, e.g. "assign"
	Done    string // the write that already succeeded
	Missing string // the write that must be retried
	Err     error  // underlying failure of the missing write
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: %q succeeded but %q failed: %v", e.Op, e.Done, e.Missing, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
