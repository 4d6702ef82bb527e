package loacheck

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
)

const cleanLOAText = `Letter of Authorization

Customer Name: Engineered Profiles, LLC
Service Address: 1001 Example Rd, Columbus OH
Account Number: 110012345678

I hereby authorize the release of my utility account data.

Customer Signature: John Doe
Customer Signature Date: 06/01/2025
`

func TestCheckDocumentIntegrityCleanDocument(t *testing.T) {
	f := CheckDocumentIntegrity(cleanLOAText, nil)
	if !f.IsValid {
		t.Fatalf("expected valid, got %+v", f)
	}
	if len(f.Issues) != 0 {
		t.Errorf("issues = %v, want none", f.Issues)
	}
	if f.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", f.Confidence)
	}
	if f.Summary != "Document integrity verified" {
		t.Errorf("summary = %q", f.Summary)
	}
}

func TestCheckDocumentIntegrityMissingAllSections(t *testing.T) {
	f := CheckDocumentIntegrity("garbled output with nothing recognizable in it", nil)
	if f.IsValid {
		t.Fatalf("expected invalid, got %+v", f)
	}
	if !hasIssueCategory(f, "MISSING_SECTIONS", SeverityCritical) {
		t.Errorf("issues = %v, want critical MISSING_SECTIONS", f.Issues)
	}
	if !strings.Contains(f.Summary, "Document integrity compromised") {
		t.Errorf("summary = %q", f.Summary)
	}
}

func TestCheckDocumentIntegrityPartialSectionsTolerated(t *testing.T) {
	// Short forms often carry only one recognizable section. A single
	// present section keeps the document valid.
	f := CheckDocumentIntegrity("Customer Signature Date: 06/01/2025", nil)
	if !f.IsValid {
		t.Fatalf("expected valid, got %+v", f)
	}
}

func TestCheckDocumentIntegrityInterleavedColumns(t *testing.T) {
	// Mid-word line breaks plus broken sentences, the shape produced when
	// two text columns are read as one.
	text := `when your supply service with C
NE You have rights under the agreement
please review your options with C
NE Before you proceed further here
confirm enrollment terms with C
NE Your account will continue
because the interleaving continues badly here
without any readable structure remaining now
`
	f := CheckDocumentIntegrity(text, nil)
	if f.IsValid {
		t.Fatalf("expected invalid, got %+v", f)
	}
	if !hasIssueCategory(f, "INTERLEAVED_TEXT_CORRUPTION", SeverityCritical) {
		t.Errorf("issues = %v, want critical INTERLEAVED_TEXT_CORRUPTION", f.Issues)
	}
}

func TestCheckDocumentIntegrityRepeatedContent(t *testing.T) {
	var b strings.Builder
	b.WriteString("Customer Name: Acme. Account Number: 12345678. Customer Signature here. ")
	for i := 0; i < 31; i++ {
		s := fmt.Sprintf("this duplicated authorization clause number %02d keeps repeating", i)
		b.WriteString(s + ". " + s + ". ")
	}
	f := CheckDocumentIntegrity(b.String(), nil)
	if !f.IsValid {
		t.Fatalf("duplication alone is a warning, got %+v", f)
	}
	if !hasIssueCategory(f, "REPEATED_CONTENT", SeverityWarning) {
		t.Errorf("issues = %v, want REPEATED_CONTENT warning", f.Issues)
	}
	if f.WarningCount == 0 || !strings.Contains(f.Summary, "review recommended") {
		t.Errorf("summary = %q, warnings = %d", f.Summary, f.WarningCount)
	}
	if f.Confidence >= 1.0 {
		t.Errorf("confidence = %v, want < 1.0", f.Confidence)
	}
}

func TestCheckDocumentIntegrityPageOrder(t *testing.T) {
	dup := &ocr.AnalyzeResult{Pages: []ocr.Page{{Number: 1}, {Number: 1}, {Number: 2}}}
	f := CheckDocumentIntegrity(cleanLOAText, dup)
	if f.IsValid {
		t.Fatalf("expected invalid for duplicate pages, got %+v", f)
	}
	if !hasIssueCategory(f, "PAGE_ORDER_ISSUE", SeverityCritical) {
		t.Errorf("issues = %v, want critical PAGE_ORDER_ISSUE", f.Issues)
	}

	gap := &ocr.AnalyzeResult{Pages: []ocr.Page{{Number: 1}, {Number: 4}}}
	f = CheckDocumentIntegrity(cleanLOAText, gap)
	if !f.IsValid {
		t.Fatalf("a page gap alone is a warning, got %+v", f)
	}
	if !hasIssueCategory(f, "PAGE_ORDER_ISSUE", SeverityWarning) {
		t.Errorf("issues = %v, want PAGE_ORDER_ISSUE warning", f.Issues)
	}
}

func TestIntegrityConfidencePenalties(t *testing.T) {
	cases := []struct {
		issues []IntegrityIssue
		want   float64
	}{
		{nil, 1.0},
		{[]IntegrityIssue{{Severity: SeverityCritical}}, 0.85},
		{[]IntegrityIssue{{Severity: SeverityWarning}}, 0.95},
		{[]IntegrityIssue{{Severity: SeverityCritical}, {Severity: SeverityWarning}}, 0.8},
	}
	for _, c := range cases {
		if got := integrityConfidence(c.issues); got != c.want {
			t.Errorf("integrityConfidence(%v) = %v, want %v", c.issues, got, c.want)
		}
	}
}

func hasIssueCategory(f IntegrityFindings, category, severity string) bool {
	for _, issue := range f.Issues {
		if issue.Category == category && issue.Severity == severity {
			return true
		}
	}
	return false
}
