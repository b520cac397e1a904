package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/valdiviamed/snotcap/internal/services"
)

// CSVStore is the primary local sink: an append-only CSV file plus a
// best-effort XLSX mirror regenerated after every append. Writers from
// separate processes are not serialized; the CSV append is a single
// O_APPEND write but the mirror is a full rewrite and can lose a race.
type CSVStore struct {
	dir      string
	csvPath  string
	xlsxPath string
	log      zerolog.Logger
}

func NewCSVStore(dir string, log zerolog.Logger) *CSVStore {
	return &CSVStore{
		dir:      dir,
		csvPath:  filepath.Join(dir, "data.csv"),
		xlsxPath: filepath.Join(dir, "data.xlsx"),
		log:      log,
	}
}

// Path returns the CSV file location.
func (s *CSVStore) Path() string { return s.csvPath }

// EnsureStore creates the data directory and a header-only CSV file when
// absent. Idempotent, safe to call on every submission.
func (s *CSVStore) EnsureStore() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(s.csvPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat store: %w", err)
	}
	f, err := os.OpenFile(s.csvPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("create store: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(services.Header()); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	return f.Close()
}

// Append writes one record row to the CSV file, then refreshes the XLSX
// mirror. Mirror failures are logged and swallowed; the CSV file is the
// source of truth.
func (s *CSVStore) Append(rec *services.SubmissionRecord) error {
	if err := s.EnsureStore(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.csvPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(rec.Row()); err != nil {
		f.Close()
		return fmt.Errorf("append row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append row: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := s.MirrorXLSX(); err != nil {
		s.log.Warn().Err(err).Str("path", s.xlsxPath).Msg("xlsx mirror refresh failed")
	}
	return nil
}

// ReadAll parses every data row of the CSV store, oldest first. A missing
// file reads as an empty store.
func (s *CSVStore) ReadAll() ([]*services.SubmissionRecord, error) {
	rows, err := s.readRaw()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	out := make([]*services.SubmissionRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := services.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Recent returns up to limit records in append order, newest last.
func (s *CSVStore) Recent(limit int) ([]*services.SubmissionRecord, error) {
	all, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// MirrorXLSX rewrites the XLSX mirror from the full CSV contents.
func (s *CSVStore) MirrorXLSX() error {
	rows, err := s.readRaw()
	if err != nil {
		return err
	}
	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := x.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return x.SaveAs(s.xlsxPath)
}

func (s *CSVStore) readRaw() ([][]string, error) {
	f, err := os.Open(s.csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return rows, nil
}
