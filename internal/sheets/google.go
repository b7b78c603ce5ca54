package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleBackend reads and appends worksheet rows of one spreadsheet document
// through the Sheets v4 API.
type GoogleBackend struct {
	svc           *gsheets.Service
	spreadsheetID string
	title         string
}

// GoogleCredentialOptions builds client options from a service-account JSON key.
func GoogleCredentialOptions(credentialsJSON []byte) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	}
}

// OpenGoogleBackend authenticates and opens the spreadsheet, failing if it is
// not shared with the service account.
func OpenGoogleBackend(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleBackend, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is empty")
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create sheets service")
	}
	doc, err := svc.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId", "properties.title").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "open spreadsheet %s", spreadsheetID)
	}
	g := &GoogleBackend{svc: svc, spreadsheetID: spreadsheetID}
	if doc.Properties != nil {
		g.title = doc.Properties.Title
	}
	return g, nil
}

func (g *GoogleBackend) Name() string {
	if g.title != "" {
		return "sheets:" + g.title
	}
	return "sheets"
}

func (g *GoogleBackend) Values(ctx context.Context, table string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, a1Range(table)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, errors.Wrapf(ErrTableNotFound, "%q", table)
		}
		return nil, err
	}

	out := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			if cell != nil {
				row[j] = fmt.Sprint(cell)
			}
		}
		out[i] = row
	}
	return out, nil
}

func (g *GoogleBackend) AppendRow(ctx context.Context, table string, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, a1Range(table), &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{cells},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil && isMissingSheet(err) {
		return errors.Wrapf(ErrTableNotFound, "%q", table)
	}
	return err
}

// a1Range addresses a whole worksheet by title.
func a1Range(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

// isMissingSheet recognizes the 400 the API returns for an unknown worksheet title.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}
