package loacheck

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/validity"
)

const (
	dateSourceVision      = "vision"
	dateSourceOCRFallback = "ocr_fallback"
)

// Pipeline runs the full validation flow for one LOA: customer signature
// date, validity window, expiration, handwritten initials, selection marks,
// customer name, and account numbers. The vision extractor is optional; with
// no extractor (or no page image) the signature date comes from OCR fields.
type Pipeline struct {
	extractor SignatureDateExtractor
	now       func() time.Time
}

func NewPipeline(extractor SignatureDateExtractor) *Pipeline {
	return &Pipeline{extractor: extractor, now: time.Now}
}

func (p *Pipeline) Run(ctx context.Context, req RequestEnvelope) (ResponseEnvelope, error) {
	meta := PipelineMetadata{StartedAt: p.now()}

	if strings.TrimSpace(req.CaseID) == "" {
		return ResponseEnvelope{}, fmt.Errorf("case_id is required")
	}
	region, err := validity.ParseRegion(req.Region)
	if err != nil {
		return ResponseEnvelope{}, fmt.Errorf("case %s: %w", req.CaseID, err)
	}

	text := req.DocumentText
	if text == "" {
		text = req.Layout.FullText()
	}
	if len(text) > MaxDocumentChars {
		text = text[:MaxDocumentChars]
		meta.InputTruncated = true
	}

	var checks []CheckResult
	var reasons []string

	// Structural integrity runs first: a corrupted or interleaved document
	// invalidates every downstream check.
	integrity := CheckDocumentIntegrity(text, req.Layout)
	checks = append(checks, CheckResult{Name: CheckIntegrity, Passed: integrity.IsValid, Detail: integrity.Summary})
	meta.ChecksExecuted = append(meta.ChecksExecuted, CheckIntegrity)
	if !integrity.IsValid {
		reasons = append(reasons, integrity.Summary)
	}

	sigDate := p.extractSignatureDate(ctx, req, text, &meta)
	if sigDate == "" {
		checks = append(checks, CheckResult{Name: CheckSignatureDate, Passed: false,
			Detail: "No customer signature date found on the LOA"})
		reasons = append(reasons, "No customer signature date found on the LOA")
	} else {
		checks = append(checks, CheckResult{Name: CheckSignatureDate, Passed: true,
			Detail: fmt.Sprintf("Customer signature date: %s (source: %s)", sigDate, meta.DateSource)})
	}
	meta.ChecksExecuted = append(meta.ChecksExecuted, CheckSignatureDate)

	now := p.now()
	val := validity.CalculateSignatureValidity(sigDate, req.State, req.UDC, region, now)
	checks = append(checks, CheckResult{Name: CheckSignatureValid, Passed: val.IsValid, Detail: val.Reason})
	meta.ChecksExecuted = append(meta.ChecksExecuted, CheckSignatureValid)
	if !val.IsValid && sigDate != "" {
		reasons = append(reasons, val.Reason)
	}

	exp := validity.CalculateLOAExpiration(sigDate, req.State, req.UDC, text, region, now)
	expDetail := exp.CalculationDetails
	if expDetail == "" {
		expDetail = exp.RuleUsed
	}
	if expDetail == "" {
		// Missing or unparseable dates skip the calculation entirely and
		// leave only the formatted-date field to explain the row.
		expDetail = exp.ExpirationDateFormatted
	}
	checks = append(checks, CheckResult{Name: CheckExpiration, Passed: !exp.IsExpired, Detail: expDetail})
	meta.ChecksExecuted = append(meta.ChecksExecuted, CheckExpiration)
	if exp.IsExpired && exp.ExpirationDateFormatted != "" {
		reasons = append(reasons, fmt.Sprintf("LOA expired on %s", exp.ExpirationDateFormatted))
	}

	// Ohio-style forms require letter initials in the release boxes; the
	// New England forms accept any mark.
	strictInitials := region == validity.GreatLakes
	initials := DetectInitials(text)
	initialsPassed := initials.EmptyBoxes == 0 && !(strictInitials && initials.XMarks > 0)
	checks = append(checks, CheckResult{Name: CheckInitials, Passed: initialsPassed,
		Detail: fmt.Sprintf("%d valid initials, %d empty boxes, %d X marks",
			initials.ValidInitials, initials.EmptyBoxes, initials.XMarks)})
	meta.ChecksExecuted = append(meta.ChecksExecuted, CheckInitials)
	if initials.EmptyBoxes > 0 {
		reasons = append(reasons, fmt.Sprintf("Found %d empty initial boxes on the LOA", initials.EmptyBoxes))
	}
	if strictInitials && initials.XMarks > 0 {
		reasons = append(reasons, fmt.Sprintf("Found %d X marks where letter initials are required", initials.XMarks))
	}

	if req.Layout != nil {
		marks := req.Layout.AllSelectionMarks()
		sel := ValidateSelectionMarks(marks, text, strictInitials)
		selPassed := sel.EmptyBoxes == 0 && !(strictInitials && sel.XMarks > 0)
		detail := fmt.Sprintf("%d marks, %d selected, %d unselected", sel.TotalMarks, sel.SelectedMarks, sel.EmptyBoxes)
		if len(sel.Issues) > 0 {
			detail = strings.Join(sel.Issues, "; ")
		}
		checks = append(checks, CheckResult{Name: CheckSelectionMarks, Passed: selPassed, Detail: detail})
		meta.ChecksExecuted = append(meta.ChecksExecuted, CheckSelectionMarks)
		if sel.EmptyBoxes > 0 {
			reasons = append(reasons, fmt.Sprintf("Found %d unselected boxes on the LOA", sel.EmptyBoxes))
		}
	}

	if strings.TrimSpace(req.AccountName) != "" {
		matched, detail := p.checkCustomerName(req, text)
		checks = append(checks, CheckResult{Name: CheckCustomerName, Passed: matched, Detail: detail})
		meta.ChecksExecuted = append(meta.ChecksExecuted, CheckCustomerName)
		if !matched {
			reasons = append(reasons, detail)
		}
	}

	if len(req.Accounts) > 0 {
		passed, detail, accReasons := checkAccountNumbers(req, text)
		checks = append(checks, CheckResult{Name: CheckAccountNumbers, Passed: passed, Detail: detail})
		meta.ChecksExecuted = append(meta.ChecksExecuted, CheckAccountNumbers)
		reasons = append(reasons, accReasons...)
	}

	decision := DecisionAccept
	if len(reasons) > 0 {
		decision = DecisionReject
	}
	meta.CompletedAt = p.now()

	env := ResponseEnvelope{
		CaseID:           req.CaseID,
		Decision:         decision,
		RejectionReasons: reasons,
		SignatureDate:    sigDate,
		ExpirationDate:   exp.ExpirationDateFormatted,
		Validity:         val,
		Expiration:       exp,
		Integrity:        integrity,
		Checks:           checks,
		PipelineMetadata: meta,
	}
	env.ReportMarkdown = buildMarkdown(env)
	return env, nil
}

// extractSignatureDate prefers the vision oracle when a page image and
// extractor are available, falling back to OCR fields on any failure.
func (p *Pipeline) extractSignatureDate(ctx context.Context, req RequestEnvelope, text string, meta *PipelineMetadata) string {
	if p.extractor != nil && len(req.PageImage) > 0 {
		finding, metrics, err := p.extractor.ExtractCustomerSignatureDate(ctx, req.PageImage)
		meta.VisionCalls += metrics.Attempts
		meta.VisionRetries += metrics.ContentRetries
		if metrics.Attempts > 1 {
			meta.VisionRetries += metrics.Attempts - 1
		}
		if err != nil {
			log.Printf("case %s: vision signature date extraction failed: %v", req.CaseID, err)
		} else if finding.Found && finding.Date != "" {
			meta.DateSource = dateSourceVision
			return finding.Date
		}
	}
	if d := signatureDateFromLayout(req.Layout, text); d != "" {
		meta.DateSource = dateSourceOCRFallback
		return d
	}
	return ""
}

// customerNameFieldKeys are tried in order against the OCR key-value pairs
// before falling back to a whole-text containment scan.
var customerNameFieldKeys = []string{
	"customer name",
	"company name",
	"business name",
	"account name",
}

func (p *Pipeline) checkCustomerName(req RequestEnvelope, text string) (bool, string) {
	for _, key := range customerNameFieldKeys {
		if v, ok := req.Layout.FieldValue(key); ok {
			return CompareCustomerNames(req.AccountName, v)
		}
	}
	if strings.Contains(normalizeCustomerName(text), normalizeCustomerName(req.AccountName)) {
		return true, "customer name found in document text"
	}
	return false, fmt.Sprintf("Customer name %q not found on the LOA", req.AccountName)
}

func checkAccountNumbers(req RequestEnvelope, text string) (passed bool, detail string, reasons []string) {
	udc := strings.ToUpper(strings.TrimSpace(req.UDC))
	if udc == "AEP" {
		_, invalid := ocr.ExtractAEPAccounts(text)
		for _, acc := range invalid {
			reasons = append(reasons, fmt.Sprintf("AEP account %s does not match the required format", acc))
		}
	}
	extracted := ocr.ExtractAccountNumbers(text, req.UDC)
	missing := MatchAccounts(req.Accounts, extracted)
	if len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("Account number(s) not found on LOA: %s", strings.Join(missing, ", ")))
	}
	passed = len(reasons) == 0
	if passed {
		detail = fmt.Sprintf("All %d account numbers found on the LOA", len(req.Accounts))
	} else {
		detail = strings.Join(reasons, "; ")
	}
	return passed, detail, reasons
}
