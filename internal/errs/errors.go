package errs

import "errors"

// Common sentinel errors for cross-layer signaling. Expected validation
// failures surface as these values (errors.Is-matchable); the engine never
// reports an ambiguous empty success.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrCycle indicates an account add/move that would create a cycle.
	ErrCycle = errors.New("account_cycle")
	// ErrPlaceholder indicates a transaction posted against a placeholder account.
	ErrPlaceholder = errors.New("placeholder_account")
	// ErrInUse indicates a removal blocked by children or referencing transactions.
	ErrInUse = errors.New("in_use")
	// ErrUnbalanced indicates split entries that do not sum to a balanced posting.
	ErrUnbalanced = errors.New("unbalanced_split")
	// ErrNoRateAvailable indicates a rate lookup with no sample at or before the date.
	ErrNoRateAvailable = errors.New("no_rate_available")
	// ErrVersionMismatch is raised at boot when the file format is unsupported.
	ErrVersionMismatch = errors.New("version_mismatch")
	// ErrWrongCredentials is raised at boot when the file password does not match.
	ErrWrongCredentials = errors.New("wrong_credentials")
	// ErrClosed indicates an operation against a closed engine or store.
	ErrClosed = errors.New("closed")
	// ErrPersistence wraps transaction begin/commit and I/O failures.
	ErrPersistence = errors.New("persistence")
)
