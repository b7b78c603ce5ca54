package sheets

import "github.com/pkg/errors"

var (
	// ErrConnection means the backend could not be opened or reached.
	ErrConnection = errors.New("spreadsheet connection failed")
	// ErrWrite means an append was attempted and rejected by the backend.
	ErrWrite = errors.New("spreadsheet append failed")
	// ErrSchemaMismatch means a record or live header does not line up with the schema table.
	ErrSchemaMismatch = errors.New("record does not match table schema")
	// ErrUnknownTable means the table name is not in the schema table.
	ErrUnknownTable = errors.New("unknown table")
	// ErrTableNotFound is returned by backends when the worksheet does not exist.
	ErrTableNotFound = errors.New("worksheet not found")
)

// kindError tags a backend failure with one of the sentinels above while
// keeping the underlying cause reachable through Unwrap.
type kindError struct {
	kind error
	err  error
}

func markErr(kind, err error, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Wrapf(err, format, args...)}
}

func (e *kindError) Error() string        { return e.kind.Error() + ": " + e.err.Error() }
func (e *kindError) Unwrap() error        { return e.err }
func (e *kindError) Is(target error) bool { return target == e.kind }
