package services

import "testing"

func TestHeaderShape(t *testing.T) {
	h := Header()
	if len(h) != ItemCount+7 {
		t.Fatalf("header has %d columns, want %d", len(h), ItemCount+7)
	}
	if h[0] != "timestamp" || h[4] != "vas_0_10" || h[5] != "snot22_q1" {
		t.Fatalf("unexpected header prefix: %v", h[:6])
	}
	if h[len(h)-2] != "snot22_total" || h[len(h)-1] != "notes" {
		t.Fatalf("unexpected header suffix: %v", h[len(h)-2:])
	}
	if h[4+ItemCount] != "snot22_q22" {
		t.Fatalf("last item column is %q", h[4+ItemCount])
	}
}

func TestRowParseRowRoundtrip(t *testing.T) {
	rec := &SubmissionRecord{
		Timestamp: "2026-08-31T12:00:00Z",
		PatientID: "abc123",
		RUTPlain:  "",
		VisitDate: "2026-08-31",
		VAS:       7,
		Notes:     "mejoría leve, con tos",
	}
	for i := range rec.Items {
		rec.Items[i] = i % 6
		rec.Total += rec.Items[i]
	}
	row := rec.Row()
	if len(row) != len(Header()) {
		t.Fatalf("row has %d fields, header %d", len(row), len(Header()))
	}
	back, err := ParseRow(row)
	if err != nil {
		t.Fatalf("ParseRow error: %v", err)
	}
	if *back != *rec {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", back, rec)
	}
}

func TestParseRowBadInput(t *testing.T) {
	if _, err := ParseRow([]string{"too", "short"}); err == nil {
		t.Fatalf("expected error for short row")
	}
	rec := &SubmissionRecord{Timestamp: "t", VisitDate: "d"}
	row := rec.Row()
	row[4] = "not-a-number"
	if _, err := ParseRow(row); err == nil {
		t.Fatalf("expected error for non-numeric vas")
	}
}
