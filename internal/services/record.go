package services

import (
	"fmt"
	"strconv"
)

// SubmissionRecord is one persisted form submission. A record is created
// once at submission time and never updated or deleted; corrections are new
// submissions.
type SubmissionRecord struct {
	Timestamp string         `json:"timestamp"`  // creation time, UTC, RFC 3339
	PatientID string         `json:"patient_id"` // salted SHA-256 digest of the normalized RUT
	RUTPlain  string         `json:"rut_plain"`  // normalized RUT; empty unless plaintext storage is enabled
	VisitDate string         `json:"visit_date"` // YYYY-MM-DD, user supplied
	VAS       int            `json:"vas_0_10"`
	Items     [ItemCount]int `json:"snot22"` // item scores, each in [0,5]
	Total     int            `json:"snot22_total"`
	Notes     string         `json:"notes"`
}

// Header returns the canonical column order shared by every sink: five
// metadata columns, the 22 item columns, the total and the notes.
func Header() []string {
	h := make([]string, 0, ItemCount+7)
	h = append(h, "timestamp", "patient_id", "rut_plain", "visit_date", "vas_0_10")
	for i := 1; i <= ItemCount; i++ {
		h = append(h, fmt.Sprintf("snot22_q%d", i))
	}
	return append(h, "snot22_total", "notes")
}

// Row projects the record onto the canonical header order.
func (r *SubmissionRecord) Row() []string {
	row := make([]string, 0, ItemCount+7)
	row = append(row, r.Timestamp, r.PatientID, r.RUTPlain, r.VisitDate, strconv.Itoa(r.VAS))
	for _, v := range r.Items {
		row = append(row, strconv.Itoa(v))
	}
	return append(row, strconv.Itoa(r.Total), r.Notes)
}

// ParseRow rebuilds a record from a row in canonical column order.
func ParseRow(row []string) (*SubmissionRecord, error) {
	if want := ItemCount + 7; len(row) != want {
		return nil, fmt.Errorf("want %d columns, got %d", want, len(row))
	}
	rec := &SubmissionRecord{
		Timestamp: row[0],
		PatientID: row[1],
		RUTPlain:  row[2],
		VisitDate: row[3],
		Notes:     row[ItemCount+6],
	}
	var err error
	if rec.VAS, err = strconv.Atoi(row[4]); err != nil {
		return nil, fmt.Errorf("vas_0_10: %w", err)
	}
	for i := 0; i < ItemCount; i++ {
		if rec.Items[i], err = strconv.Atoi(row[5+i]); err != nil {
			return nil, fmt.Errorf("snot22_q%d: %w", i+1, err)
		}
	}
	if rec.Total, err = strconv.Atoi(row[ItemCount+5]); err != nil {
		return nil, fmt.Errorf("snot22_total: %w", err)
	}
	return rec, nil
}
