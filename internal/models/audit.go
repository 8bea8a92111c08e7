package models

import "time"

// Audit issue codes
const (
	IssueMissingEarningRow   = "missing_earning_row_for_paid_booking"
	IssuePlatformFeeMismatch = "platform_fee_mismatch"
	IssueGSTMismatch         = "gst_mismatch"
	IssueNetMismatch         = "net_mismatch_or_negative"
	IssueKYCNotVerified      = "kyc_not_verified_for_earning"
)

// AuditFinding represents one consistency violation detected by the auditor.
// Findings are append-only; they are never mutated after creation.
type AuditFinding struct {
	ID            int64     `json:"id" db:"id"`
	SubjectRef    string    `json:"subject_ref" db:"subject_ref"` // booking id or earning row id
	IssueCode     string    `json:"issue_code" db:"issue_code"`
	ExpectedValue string    `json:"expected_value" db:"expected_value"`
	ActualValue   string    `json:"actual_value" db:"actual_value"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// AuditRunResult represents the outcome of one auditor pass
type AuditRunResult struct {
	RunID       string    `json:"run_id"`
	Findings    int       `json:"findings"`
	RowsChecked int       `json:"rows_checked"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
