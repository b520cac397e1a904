package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordStore is the local, always-written sink. Append must be durable; an
// error aborts the submission.
type RecordStore interface {
	EnsureStore() error
	Append(rec *SubmissionRecord) error
	Recent(limit int) ([]*SubmissionRecord, error)
}

// RemoteSink mirrors records to a remote spreadsheet, best effort.
type RemoteSink interface {
	Append(ctx context.Context, rec *SubmissionRecord) error
}

// AuditStore records submission events. Implementations must not fail the
// caller.
type AuditStore interface {
	AddAudit(entry AuditEntry)
}

// AuditEntry is one audit-trail line.
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note"`
}

// SubmitRequest carries one completed form.
type SubmitRequest struct {
	Consent   bool
	RUT       string
	VisitDate string // YYYY-MM-DD; empty means today
	VAS       int
	Scores    []int // exactly ItemCount values, each in [0,5]
	Notes     string
}

// SubmitResult reports the persisted record and which sinks took it.
type SubmitResult struct {
	SubmissionID  string
	Record        *SubmissionRecord
	SinksWritten  []string
	RemoteWarning string // set when the remote sink failed; the local write already succeeded
}

// SubmissionService hosts the submission pipeline: validate, pseudonymize,
// assemble, persist locally, then mirror remotely best effort.
type SubmissionService struct {
	salt           string
	storePlaintext bool
	local          RecordStore
	remote         RemoteSink // nil when the remote sink is not configured
	audit          AuditStore // nil disables auditing
	log            zerolog.Logger
	now            func() time.Time
	idGen          func() string
}

func NewSubmissionService(salt string, storePlaintext bool, local RecordStore, remote RemoteSink, audit AuditStore, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		salt:           salt,
		storePlaintext: storePlaintext,
		local:          local,
		remote:         remote,
		audit:          audit,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
		idGen:          func() string { return submissionID(12) },
	}
}

func submissionID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Submit runs one submission to completion. Validation and precondition
// failures block all persistence; a local sink failure aborts the
// submission; a remote sink failure only sets RemoteWarning on the result.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	id := s.idGen()

	if !req.Consent {
		s.addAudit("submission_rejected", id, "consent missing")
		return nil, NewConsentMissingError()
	}
	if !ValidateRUT(req.RUT) {
		s.addAudit("submission_rejected", id, "invalid identifier")
		return nil, NewInvalidIdentifierError()
	}
	pid, err := PseudonymID(req.RUT, s.salt)
	if err != nil {
		s.addAudit("submission_rejected", id, "salt unconfigured")
		return nil, err
	}
	if len(req.Scores) != ItemCount {
		return nil, NewInvalidError(fmt.Sprintf("expected %d item scores, got %d", ItemCount, len(req.Scores)))
	}
	for i, v := range req.Scores {
		if v < 0 || v > 5 {
			return nil, NewInvalidError(fmt.Sprintf("snot22_q%d out of range: %d", i+1, v))
		}
	}
	if req.VAS < 0 || req.VAS > 10 {
		return nil, NewInvalidError(fmt.Sprintf("vas_0_10 out of range: %d", req.VAS))
	}
	visit := req.VisitDate
	if visit == "" {
		visit = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", visit); err != nil {
		return nil, NewInvalidError("visit_date must be YYYY-MM-DD")
	}

	rec := &SubmissionRecord{
		Timestamp: s.now().Format(time.RFC3339),
		PatientID: pid,
		VisitDate: visit,
		VAS:       req.VAS,
		Notes:     req.Notes,
	}
	if s.storePlaintext {
		rec.RUTPlain = NormalizeRUT(req.RUT)
	}
	for i, v := range req.Scores {
		rec.Items[i] = v
		rec.Total += v
	}

	if err := s.local.Append(rec); err != nil {
		s.addAudit("local_append_failed", id, err.Error())
		return nil, NewLocalWriteError(err.Error())
	}
	res := &SubmitResult{SubmissionID: id, Record: rec, SinksWritten: []string{"local"}}
	s.addAudit("submission_saved", id, "patient "+pid[:8])

	if s.remote != nil {
		if err := s.remote.Append(ctx, rec); err != nil {
			res.RemoteWarning = err.Error()
			s.log.Warn().Err(err).Str("submission", id).Msg("remote sink append failed; record kept locally")
			s.addAudit("remote_append_failed", id, err.Error())
		} else {
			res.SinksWritten = append(res.SinksWritten, "remote")
		}
	}
	return res, nil
}

// Recent returns up to limit records from the local store, oldest first.
func (s *SubmissionService) Recent(limit int) ([]*SubmissionRecord, error) {
	return s.local.Recent(limit)
}

func (s *SubmissionService) addAudit(action, target, note string) {
	if s.audit == nil {
		return
	}
	s.audit.AddAudit(AuditEntry{Time: s.now(), Actor: "submission", Action: action, Target: target, Note: note})
}
