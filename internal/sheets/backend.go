package sheets

import "context"

// Backend is the raw row store behind a spreadsheet document. Values returns
// every row including the header row; a worksheet that does not exist yields
// ErrTableNotFound.
type Backend interface {
	Name() string
	Values(ctx context.Context, table string) ([][]string, error)
	AppendRow(ctx context.Context, table string, row []string) error
}
