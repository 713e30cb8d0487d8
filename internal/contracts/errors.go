package contracts

import "errors"

var (
	// ErrEmptyUniverse means zero snapshots loaded or zero entities passed the filter
	ErrEmptyUniverse = errors.New("no eligible entities")

	// ErrNoPreviousDate means the ledger has no date before the requested one
	ErrNoPreviousDate = errors.New("no previous ledger date")

	// ErrLedgerCorrupt means the persisted ledger could not be parsed
	ErrLedgerCorrupt = errors.New("history ledger corrupt")

	// ErrSnapshotLoad means the snapshot source failed outright
	ErrSnapshotLoad = errors.New("snapshot load failed")
)
