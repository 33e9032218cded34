package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const driveScope = "https://www.googleapis.com/auth/drive"

// SheetsDatabase stores each table as a worksheet of a Google spreadsheet.
// The first row of a worksheet is its header.
type SheetsDatabase struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsDatabase opens the spreadsheet with the given id using a service account
// credential bundle. Extra client options are appended after the credentials.
func NewSheetsDatabase(ctx context.Context, spreadsheetID string, credentials []byte, opts ...option.ClientOption) (TabularStore, error) {
	if spreadsheetID == "" {
		return nil, unavailable(errors.New("missing spreadsheet id"))
	}
	if len(credentials) == 0 && len(opts) == 0 {
		return nil, unavailable(errors.New("missing store credentials"))
	}

	clientOptions := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope, driveScope)}
	if len(credentials) > 0 {
		clientOptions = append(clientOptions, option.WithCredentialsJSON(credentials))
	}
	clientOptions = append(clientOptions, opts...)

	service, err := sheets.NewService(ctx, clientOptions...)
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to create sheets client: %w", err))
	}

	database := &SheetsDatabase{
		service:       service,
		spreadsheetID: spreadsheetID,
	}
	if err := database.Ping(ctx); err != nil {
		return nil, err
	}
	return database, nil
}

func (s *SheetsDatabase) ReadAll(ctx context.Context, table Table) ([]Record, error) {
	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(table.Name)).Context(ctx).Do()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(response.Values) == 0 {
		return []Record{}, nil
	}

	header := cellStrings(response.Values[0])
	records := make([]Record, 0, len(response.Values)-1)
	for _, row := range response.Values[1:] {
		values := cellStrings(row)
		if isBlank(values) {
			continue
		}
		records = append(records, table.Decode(header, values))
	}
	return records, nil
}

func (s *SheetsDatabase) Append(ctx context.Context, table Table, values []string) error {
	if err := table.checkArity(values); err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, value := range values {
		row[i] = value
	}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetRange(table.Name), &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return classifySheetsWriteError(err)
	}
	return nil
}

func (s *SheetsDatabase) Ping(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (s *SheetsDatabase) Close() error {
	return nil
}

func classifySheetsWriteError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return rejected(err)
		}
	}
	return unavailable(err)
}

// sheetRange addresses a whole worksheet, quoting names that A1 notation cannot take bare.
func sheetRange(name string) string {
	for _, r := range name {
		isWord := r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isWord {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

func cellStrings(cells []interface{}) []string {
	values := make([]string, len(cells))
	for i, cell := range cells {
		if cell != nil {
			values[i] = fmt.Sprint(cell)
		}
	}
	return values
}

func isBlank(values []string) bool {
	for _, value := range values {
		if value != "" {
			return false
		}
	}
	return true
}
