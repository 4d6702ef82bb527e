package loacheck

import (
	"time"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/validity"
)

const (
	CapabilityLOAValidation = "loa-validation"

	// MaxDocumentChars bounds the text handed to the override scanner and the
	// regex checks; OCR output beyond this is attachment noise.
	MaxDocumentChars = 200000
)

type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// CheckName identifies one validation check in reports and metadata.
const (
	CheckIntegrity      = "document_integrity"
	CheckSignatureDate  = "signature_date"
	CheckSignatureValid = "signature_validity"
	CheckExpiration     = "expiration"
	CheckInitials       = "initials"
	CheckSelectionMarks = "selection_marks"
	CheckCustomerName   = "customer_name"
	CheckAccountNumbers = "account_numbers"
)

// RequestEnvelope carries everything the pipeline needs for one document.
// Layout and PageImage come from the upstream OCR/render stages, the rest
// from case metadata.
type RequestEnvelope struct {
	CaseID       string             `json:"case_id"`
	Region       string             `json:"region"`
	State        string             `json:"state"`
	UDC          string             `json:"udc,omitempty"`
	AccountName  string             `json:"account_name,omitempty"`
	Accounts     []string           `json:"accounts,omitempty"`
	DocumentText string             `json:"document_text,omitempty"`
	Layout       *ocr.AnalyzeResult `json:"layout,omitempty"`
	PageImage    []byte             `json:"page_image,omitempty"`
}

// CheckResult is one itemized check outcome. Detail is human-readable and
// surfaced verbatim in the report.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type PipelineMetadata struct {
	ChecksExecuted []string  `json:"checks_executed"`
	VisionCalls    int       `json:"vision_calls"`
	VisionRetries  int       `json:"vision_retries"`
	DateSource     string    `json:"date_source,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	InputTruncated bool      `json:"input_truncated"`
}

// ResponseEnvelope is the pipeline's decision plus everything the reporting
// and persistence layers need.
type ResponseEnvelope struct {
	CaseID           string                    `json:"case_id"`
	Decision         Decision                  `json:"decision"`
	RejectionReasons []string                  `json:"rejection_reasons"`
	SignatureDate    string                    `json:"signature_date,omitempty"`
	ExpirationDate   string                    `json:"expiration_date,omitempty"`
	Validity         validity.ValidityResult   `json:"validity"`
	Expiration       validity.ExpirationResult `json:"expiration"`
	Integrity        IntegrityFindings         `json:"integrity"`
	Checks           []CheckResult             `json:"checks"`
	ReportMarkdown   string                    `json:"report_markdown"`
	PipelineMetadata PipelineMetadata          `json:"pipeline_metadata"`
}

// SignatureDateFinding is what the vision oracle reports for the customer
// signature date. YearConfidence and AlternateYear drive the handwriting
// auto-correction: handwritten 3/5 and 0/6 digits are routinely misread.
type SignatureDateFinding struct {
	Date           string `json:"customer_signature_date"`
	Found          bool   `json:"date_found"`
	Confidence     int    `json:"confidence"`
	Location       string `json:"location_description"`
	Reasoning      string `json:"reasoning"`
	YearConfidence int    `json:"year_confidence"`
	AlternateYear  string `json:"possible_alternate_year"`
}
