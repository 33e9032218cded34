package database

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

const testSpreadsheetID = "sheet-123"

// fakeSheets serves the subset of the Sheets v4 REST API the store uses.
type fakeSheets struct {
	mu          sync.Mutex
	worksheets  map[string][][]interface{}
	status      int // forced status for every request when non-zero
	appendCode  int // forced status for appends when non-zero
	appendQuery []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		writeAPIError(w, f.status)
		return
	}

	prefix := "/v4/spreadsheets/" + testSpreadsheetID
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeAPIError(w, http.StatusNotFound)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"spreadsheetId": testSpreadsheetID})
	case strings.HasPrefix(rest, "/values/") && strings.HasSuffix(rest, ":append") && r.Method == http.MethodPost:
		if f.appendCode != 0 {
			writeAPIError(w, f.appendCode)
			return
		}
		name := strings.TrimSuffix(strings.TrimPrefix(rest, "/values/"), ":append")
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeAPIError(w, http.StatusBadRequest)
			return
		}
		f.appendQuery = append(f.appendQuery, r.URL.Query().Get("valueInputOption"))
		f.worksheets[name] = append(f.worksheets[name], body.Values...)
		writeJSON(w, map[string]any{"spreadsheetId": testSpreadsheetID})
	case strings.HasPrefix(rest, "/values/") && r.Method == http.MethodGet:
		name := strings.TrimPrefix(rest, "/values/")
		rows, ok := f.worksheets[name]
		if !ok {
			writeAPIError(w, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"range": name, "majorDimension": "ROWS", "values": rows})
	default:
		writeAPIError(w, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}

func newTestSheets(t *testing.T, fake *fakeSheets) TabularStore {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	ds, err := NewSheetsDatabase(context.Background(), testSpreadsheetID, nil,
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("NewSheetsDatabase error: %v", err)
	}
	return ds
}

func TestSheets_ReadAll_HeaderOnly(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{
		"Announcements": {{"timestamp", "title", "message", "audience"}},
	}}
	ds := newTestSheets(t, fake)

	records, err := ds.ReadAll(context.Background(), testTable)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}
}

func TestSheets_AppendThenReadAll(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{
		"Announcements": {
			{"timestamp", "title", "message", "audience"},
			{"2025-12-01 09:00:00", "Rehearsal", "Hall at 3pm"},
			{},
		},
	}}
	ds := newTestSheets(t, fake)
	ctx := context.Background()

	if err := ds.Append(ctx, testTable, []string{"2025-12-02 09:00:00", "Costumes", "Bring them", "Dance"}); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if len(fake.appendQuery) != 1 || fake.appendQuery[0] != "RAW" {
		t.Errorf("expected RAW value input option, got %q", fake.appendQuery)
	}

	records, err := ds.ReadAll(ctx, testTable)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (blank row skipped), got %d: %+v", len(records), records)
	}
	if records[0]["audience"] != "" {
		t.Errorf("expected padded audience, got %q", records[0]["audience"])
	}
	if records[1]["title"] != "Costumes" || records[1]["audience"] != "Dance" {
		t.Errorf("unexpected appended record: %+v", records[1])
	}
}

func TestSheets_AppendForbiddenIsWriteError(t *testing.T) {
	fake := &fakeSheets{
		worksheets: map[string][][]interface{}{"Announcements": {{"timestamp", "title", "message", "audience"}}},
		appendCode: http.StatusForbidden,
	}
	ds := newTestSheets(t, fake)

	err := ds.Append(context.Background(), testTable, []string{"ts", "t", "m", ""})
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
}

func TestSheets_UnauthorizedIsUnavailable(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{}}
	ds := newTestSheets(t, fake)

	fake.mu.Lock()
	fake.status = http.StatusUnauthorized
	fake.mu.Unlock()

	if _, err := ds.ReadAll(context.Background(), testTable); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on read, got %v", err)
	}
	if err := ds.Append(context.Background(), testTable, []string{"ts", "t", "m", ""}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on append, got %v", err)
	}
}

func TestSheets_ConnectFailure(t *testing.T) {
	fake := &fakeSheets{status: http.StatusUnauthorized}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	_, err := NewSheetsDatabase(context.Background(), testSpreadsheetID, nil,
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSheetRange(t *testing.T) {
	if got := sheetRange("Gallery"); got != "Gallery" {
		t.Errorf("sheetRange(Gallery) = %q", got)
	}
	if got := sheetRange("Event Photos"); got != "'Event Photos'" {
		t.Errorf("sheetRange(Event Photos) = %q", got)
	}
	if got := sheetRange("Tom's"); got != "'Tom''s'" {
		t.Errorf("sheetRange(Tom's) = %q", got)
	}
}
