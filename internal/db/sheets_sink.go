package db

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/valdiviamed/snotcap/internal/services"
)

// Grid size for a freshly created worksheet.
const (
	newWorksheetRows = 100
	newWorksheetCols = 40
)

// SheetsSink appends records to a Google Sheets worksheet using a service
// account. The client is rebuilt on every call; submissions are human-paced
// and the handle is not worth pooling.
type SheetsSink struct {
	credentialsFile string
	spreadsheetID   string
	worksheet       string
	timeout         time.Duration

	// newService is swappable in tests.
	newService func(ctx context.Context) (*sheets.Service, error)
}

func NewSheetsSink(credentialsFile, spreadsheetID, worksheet string, timeout time.Duration) *SheetsSink {
	if worksheet == "" {
		worksheet = "Respuestas"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	s := &SheetsSink{
		credentialsFile: credentialsFile,
		spreadsheetID:   spreadsheetID,
		worksheet:       worksheet,
		timeout:         timeout,
	}
	s.newService = s.serviceAccountClient
	return s
}

func (s *SheetsSink) serviceAccountClient(ctx context.Context) (*sheets.Service, error) {
	data, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
}

// Append writes one record row, creating the worksheet and its header row
// when absent. Every error out of here is the caller's cue for a warning,
// not a failure: the local store has already taken the record.
func (s *SheetsSink) Append(ctx context.Context, rec *services.SubmissionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	svc, err := s.newService(ctx)
	if err != nil {
		return err
	}
	if err := s.ensureWorksheet(ctx, svc); err != nil {
		return err
	}
	if err := s.ensureHeader(ctx, svc); err != nil {
		return err
	}
	row := rowValues(rec.Row())
	_, err = svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.rangeRef("A1"), &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *SheetsSink) ensureWorksheet(ctx context.Context, svc *sheets.Service) error {
	sp, err := svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	for _, sh := range sp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.worksheet {
			return nil
		}
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: s.worksheet,
					GridProperties: &sheets.GridProperties{
						RowCount:    newWorksheetRows,
						ColumnCount: newWorksheetCols,
					},
				},
			},
		}},
	}
	if _, err := svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create worksheet %q: %w", s.worksheet, err)
	}
	return nil
}

// ensureHeader writes the canonical header as the first row of an empty
// worksheet.
func (s *SheetsSink) ensureHeader(ctx context.Context, svc *sheets.Service) error {
	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A1:A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read worksheet: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	header := rowValues(services.Header())
	_, err = svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.rangeRef("A1"), &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// rangeRef builds an A1-notation range scoped to the worksheet, quoting the
// title so names with spaces or quotes survive.
func (s *SheetsSink) rangeRef(cells string) string {
	return "'" + strings.ReplaceAll(s.worksheet, "'", "''") + "'!" + cells
}

func rowValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
