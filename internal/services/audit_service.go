package services

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/localpros/backend/internal/audit"
	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/models"
)

// AuditService is the read-only consistency check over bookings, earnings and
// providers. It recomputes every ledger row from the commission and GST inputs
// recorded on the row itself, so a finding always reflects the configuration
// that was live when the money moved. It produces findings and fixes nothing.
type AuditService struct {
	db    *sql.DB
	cfg   *config.PlatformConfig
	fees  *FeeCalculator
	audit *audit.AuditLogger
}

func NewAuditService(db *sql.DB, cfg *config.PlatformConfig, fees *FeeCalculator) *AuditService {
	return &AuditService{
		db:    db,
		cfg:   cfg,
		fees:  fees,
		audit: audit.NewAuditLogger(),
	}
}

// RunAudit runs a consistency pass synchronously
// @Summary Run the financial auditor
// @Description Check paid bookings against the earnings ledger and report inconsistencies as findings
// @Tags admin
// @Produce json
// @Success 200 {object} models.AuditRunResult
// @Failure 500 {object} ErrorResponse
// @Router /admin/audit/run [post]
func (as *AuditService) RunAudit(w http.ResponseWriter, r *http.Request) {
	result, err := as.Run(r.Context())
	if err != nil {
		log.Printf("[AUDIT] Run failed: %v", err)
		SendErrorResponse(w, "Audit run failed", http.StatusInternalServerError, nil)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Run executes every check and returns how many findings were new. Reported
// findings deduplicate on (subject, issue, expected, actual), so repeated runs
// over an unchanged dataset log nothing the second time.
func (as *AuditService) Run(ctx context.Context) (*models.AuditRunResult, error) {
	result := &models.AuditRunResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log.Printf("[AUDIT] Run %s started", result.RunID)

	var findings []models.AuditFinding

	missing, err := as.checkMissingEarnings(ctx)
	if err != nil {
		return nil, err
	}
	findings = append(findings, missing...)

	mismatches, checked, err := as.checkLedgerArithmetic(ctx)
	if err != nil {
		return nil, err
	}
	findings = append(findings, mismatches...)
	result.RowsChecked = checked

	kyc, err := as.checkProviderKYC(ctx)
	if err != nil {
		return nil, err
	}
	findings = append(findings, kyc...)

	for _, finding := range findings {
		inserted, err := as.recordFinding(ctx, finding)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Findings++
			as.audit.LogFinding(result.RunID, finding.SubjectRef, finding.IssueCode, finding.ExpectedValue, finding.ActualValue)
		}
	}

	result.FinishedAt = time.Now()
	as.audit.LogRun(result.RunID, result.RowsChecked, result.Findings)
	log.Printf("[AUDIT] Run %s finished: %d rows checked, %d new findings", result.RunID, result.RowsChecked, result.Findings)
	return result, nil
}

// checkMissingEarnings flags money-bearing bookings that never got their
// ledger row.
func (as *AuditService) checkMissingEarnings(ctx context.Context) ([]models.AuditFinding, error) {
	rows, err := as.db.QueryContext(ctx, `
		SELECT b.id FROM bookings b
		LEFT JOIN earnings e ON e.booking_id = b.id
		WHERE b.status IN ('paid', 'completed', 'disputed', 'refunded') AND e.id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []models.AuditFinding
	for rows.Next() {
		var bookingID string
		if err := rows.Scan(&bookingID); err != nil {
			return nil, err
		}
		findings = append(findings, models.AuditFinding{
			SubjectRef:    bookingID,
			IssueCode:     models.IssueMissingEarningRow,
			ExpectedValue: "1 earnings row",
			ActualValue:   "none",
		})
	}
	return findings, rows.Err()
}

// checkLedgerArithmetic recomputes fee, GST and net for every ledger row from
// the bps inputs stored on the row.
func (as *AuditService) checkLedgerArithmetic(ctx context.Context) ([]models.AuditFinding, int, error) {
	rows, err := as.db.QueryContext(ctx, `
		SELECT booking_id, gross_amount, platform_fee, tax_amount, net_amount, tier_bps, tax_bps, tax_registered
		FROM earnings`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var findings []models.AuditFinding
	checked := 0
	for rows.Next() {
		var bookingID string
		var gross, platformFee, taxAmount, netAmount, tierBps, taxBps int64
		var taxRegistered bool
		err := rows.Scan(&bookingID, &gross, &platformFee, &taxAmount, &netAmount, &tierBps, &taxBps, &taxRegistered)
		if err != nil {
			return nil, checked, err
		}
		checked++

		if expected := as.fees.PlatformFee(gross, tierBps); expected != platformFee {
			findings = append(findings, models.AuditFinding{
				SubjectRef:    bookingID,
				IssueCode:     models.IssuePlatformFeeMismatch,
				ExpectedValue: strconv.FormatInt(expected, 10),
				ActualValue:   strconv.FormatInt(platformFee, 10),
			})
		}
		if expected := as.fees.Tax(gross, taxRegistered, taxBps); expected != taxAmount {
			findings = append(findings, models.AuditFinding{
				SubjectRef:    bookingID,
				IssueCode:     models.IssueGSTMismatch,
				ExpectedValue: strconv.FormatInt(expected, 10),
				ActualValue:   strconv.FormatInt(taxAmount, 10),
			})
		}
		// Net must be gross minus the fee actually recorded, and never
		// negative; both failures share one code.
		if expected := gross - platformFee; expected != netAmount {
			findings = append(findings, models.AuditFinding{
				SubjectRef:    bookingID,
				IssueCode:     models.IssueNetMismatch,
				ExpectedValue: strconv.FormatInt(expected, 10),
				ActualValue:   strconv.FormatInt(netAmount, 10),
			})
		} else if netAmount < 0 {
			findings = append(findings, models.AuditFinding{
				SubjectRef:    bookingID,
				IssueCode:     models.IssueNetMismatch,
				ExpectedValue: "net >= 0",
				ActualValue:   strconv.FormatInt(netAmount, 10),
			})
		}
	}
	return findings, checked, rows.Err()
}

// checkProviderKYC flags providers holding earnings without completed
// verification. The rows themselves are legitimate; the flag exists so the
// backlog is visible before payout time.
func (as *AuditService) checkProviderKYC(ctx context.Context) ([]models.AuditFinding, error) {
	rows, err := as.db.QueryContext(ctx, `
		SELECT DISTINCT e.provider_id FROM earnings e
		JOIN providers p ON p.id = e.provider_id
		WHERE p.kyc_verified = FALSE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []models.AuditFinding
	for rows.Next() {
		var providerID string
		if err := rows.Scan(&providerID); err != nil {
			return nil, err
		}
		findings = append(findings, models.AuditFinding{
			SubjectRef:    providerID,
			IssueCode:     models.IssueKYCNotVerified,
			ExpectedValue: "kyc_verified=true",
			ActualValue:   "kyc_verified=false",
		})
	}
	return findings, rows.Err()
}

func (as *AuditService) recordFinding(ctx context.Context, finding models.AuditFinding) (bool, error) {
	res, err := as.db.ExecContext(ctx, `
		INSERT INTO audit_findings (subject_ref, issue_code, expected_value, actual_value, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (subject_ref, issue_code, expected_value, actual_value) DO NOTHING`,
		finding.SubjectRef, finding.IssueCode, finding.ExpectedValue, finding.ActualValue)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListFindings returns recorded findings, newest first
// @Summary List audit findings
// @Description Paginated consistency findings from previous audit runs
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{findings=[]models.AuditFinding,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /admin/audit/findings [get]
func (as *AuditService) ListFindings(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 50, 200)
	rows, err := as.db.QueryContext(r.Context(), `
		SELECT id, subject_ref, issue_code, expected_value, actual_value, created_at
		FROM audit_findings ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		log.Printf("[AUDIT] Findings query failed: %v", err)
		SendErrorResponse(w, "Failed to fetch findings", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	findings := []models.AuditFinding{}
	for rows.Next() {
		var f models.AuditFinding
		if err := rows.Scan(&f.ID, &f.SubjectRef, &f.IssueCode, &f.ExpectedValue, &f.ActualValue, &f.CreatedAt); err != nil {
			log.Printf("[AUDIT] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch findings", http.StatusInternalServerError, nil)
			return
		}
		findings = append(findings, f)
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"findings": findings,
		"count":    len(findings),
	})
}
