package audit

import (
	"encoding/json"
	"log"
	"time"
)

// AuditEvent is one line of the financial audit trail. Events are emitted as
// AUDIT: {json} so log shipping can split the trail from application noise.
type AuditEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id,omitempty"`
	SubjectRef string    `json:"subject_ref,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Status     string    `json:"status,omitempty"`
	Details    any       `json:"details,omitempty"`
}

type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogFinding(runID, subjectRef, issueCode, expected, actual string) {
	event := AuditEvent{
		Timestamp:  time.Now(),
		EventType:  "FINDING",
		RunID:      runID,
		SubjectRef: subjectRef,
		Status:     issueCode,
		Details: map[string]string{
			"expected": expected,
			"actual":   actual,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogRun(runID string, rowsChecked, newFindings int) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "AUDIT_RUN",
		RunID:     runID,
		Status:    "COMPLETED",
		Details: map[string]int{
			"rows_checked": rowsChecked,
			"new_findings": newFindings,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogPayout(payoutID, providerID string, amount int64, status string) {
	event := AuditEvent{
		Timestamp:  time.Now(),
		EventType:  "PAYOUT",
		SubjectRef: payoutID,
		Amount:     amount,
		Status:     status,
		Details:    map[string]string{"provider_id": providerID},
	}
	a.log(event)
}

func (a *AuditLogger) LogRefund(bookingID, paymentRef string, amount int64) {
	event := AuditEvent{
		Timestamp:  time.Now(),
		EventType:  "REFUND",
		SubjectRef: bookingID,
		Amount:     amount,
		Status:     "RECORDED",
		Details:    map[string]string{"payment_ref": paymentRef},
	}
	a.log(event)
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
