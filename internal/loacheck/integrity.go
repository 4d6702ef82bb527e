package loacheck

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
)

// Integrity issue severities. Only CRITICAL issues fail the document;
// warnings lower confidence and are surfaced for review.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// IntegrityIssue is one detected structural problem in the document text.
type IntegrityIssue struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Evidence    string `json:"evidence,omitempty"`
}

// IntegrityFindings summarizes the structural integrity scan of one
// document: interleaved or fragmented text, missing sections, duplicated
// content, and character corruption.
type IntegrityFindings struct {
	IsValid       bool             `json:"is_valid"`
	Confidence    float64          `json:"confidence"`
	Issues        []IntegrityIssue `json:"issues"`
	Summary       string           `json:"summary"`
	CriticalCount int              `json:"critical_count"`
	WarningCount  int              `json:"warning_count"`
}

var (
	singleLetterLinePattern = regexp.MustCompile(`\b[A-Z]\s*\n`)
	excessiveSpacingPattern = regexp.MustCompile(`[a-zA-Z]\s{5,}[a-zA-Z]`)
	specialCharRunPattern   = regexp.MustCompile(`[^a-zA-Z0-9\s]{8,}`)
	nonASCIIRunPattern      = regexp.MustCompile(`[^\x00-\x7F]{5,}`)
	sentenceSplitPattern    = regexp.MustCompile(`[.!?]\s+`)
	formLabelPattern        = regexp.MustCompile(`(?i)(Name|Address|Date|Phone|Email|Account|Signature|Title):`)
	brokenLineEndPattern    = regexp.MustCompile(`\b[A-Z]{1,2}\s*$`)
	capitalLineStartPattern = regexp.MustCompile(`^\s*[A-Z]{2,}`)
	integrityWordPattern    = regexp.MustCompile(`\b\w+\b`)
)

// requiredSectionPatterns maps each section every LOA carries to the
// phrasings it appears under. A document missing all three sections is
// treated as corrupted or interleaved.
var requiredSectionPatterns = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"customer_info", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Customer\s+Name`),
		regexp.MustCompile(`(?i)Customer\s+Information`),
		regexp.MustCompile(`To\s+be\s+completed\s+by\s+[Cc]ustomer`),
	}},
	{"authorization", []*regexp.Regexp{
		regexp.MustCompile(`(?i)AUTHORIZATION`),
		regexp.MustCompile(`[Aa]uthorize[sd]?\s+[Pp]erson`),
		regexp.MustCompile(`[Ss]ignature`),
	}},
	{"account_info", []*regexp.Regexp{
		regexp.MustCompile(`[Aa]ccount\s+[Nn]umber`),
		regexp.MustCompile(`[Uu]tility`),
		regexp.MustCompile(`[Ss]ervice\s+[Aa]ddress`),
	}},
}

// continuationWords are line-leading words that legitimately start lowercase
// when a sentence wraps, so they never count as broken-sentence evidence.
var continuationWords = map[string]bool{
	"and": true, "or": true, "the": true, "a": true, "an": true, "of": true,
	"to": true, "for": true, "in": true, "on": true, "at": true, "by": true,
}

// CheckDocumentIntegrity scans the flattened document text for structural
// corruption. The thresholds are deliberately high so legitimate OCR noise
// on real forms never trips them; a CRITICAL issue means the document is
// unreadable enough that no other check can be trusted.
func CheckDocumentIntegrity(text string, layout *ocr.AnalyzeResult) IntegrityFindings {
	var issues []IntegrityIssue
	issues = append(issues, interleavedTextIssues(text)...)
	issues = append(issues, fragmentationIssues(text)...)
	issues = append(issues, continuityIssues(text)...)
	issues = append(issues, missingSectionIssues(text)...)
	issues = append(issues, repeatedFragmentIssues(text)...)
	issues = append(issues, characterCorruptionIssues(text)...)
	if layout != nil {
		issues = append(issues, pageOrderIssues(layout.Pages)...)
	}

	critical, warning := 0, 0
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		}
	}

	f := IntegrityFindings{
		IsValid:       critical == 0,
		Confidence:    integrityConfidence(issues),
		Issues:        issues,
		CriticalCount: critical,
		WarningCount:  warning,
	}
	f.Summary = integritySummary(f)
	return f
}

// interleavedTextIssues detects text from overlapping columns or pages mixed
// together. A single signal is common on legitimate forms, so the check
// flags only when multiple independent signals pile up.
func interleavedTextIssues(text string) []IntegrityIssue {
	lines := strings.Split(text, "\n")
	var signals []string
	signalCount := 0

	var brokenExamples []string
	for i := 0; i+1 < len(lines); i++ {
		cur := strings.TrimSpace(lines[i])
		next := strings.TrimSpace(lines[i+1])
		if len(cur) > 10 && !strings.HasSuffix(cur, ":") &&
			brokenLineEndPattern.MatchString(cur) && capitalLineStartPattern.MatchString(next) {
			tail, head := cur, next
			if len(tail) > 20 {
				tail = tail[len(tail)-20:]
			}
			if len(head) > 20 {
				head = head[:20]
			}
			brokenExamples = append(brokenExamples, tail+"|"+head)
			signalCount++
		}
	}
	if len(brokenExamples) >= 2 {
		signals = append(signals, fmt.Sprintf("%d broken words across lines", len(brokenExamples)))
	}

	// Multi-space gaps inside substantial prose lines indicate interleaved
	// columns. Form-field lines with colons are exempt.
	gaps := 0
	for _, line := range lines {
		if strings.Contains(line, ":") || len(line) <= 40 {
			continue
		}
		if n := len(excessiveSpacingPattern.FindAllString(line, -1)); n > 0 {
			gaps += n
			signalCount++
		}
	}
	if gaps >= 3 {
		signals = append(signals, fmt.Sprintf("%d excessive spacing gaps in text", gaps))
	}

	words := integrityWordPattern.FindAllString(text, -1)
	shortUpper := 0
	for _, w := range words {
		if len(w) <= 2 && w != strings.ToLower(w) && w == strings.ToUpper(w) {
			shortUpper++
		}
	}
	if len(words) > 0 {
		ratio := float64(shortUpper) / float64(len(words))
		if ratio > 0.05 {
			signals = append(signals, fmt.Sprintf("high ratio (%.1f%%) of short uppercase fragments", ratio*100))
			signalCount++
		}
	}

	lowercaseStarts := 0
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if len(s) > 20 && s[0] >= 'a' && s[0] <= 'z' {
			first := strings.Fields(s)[0]
			if !continuationWords[strings.ToLower(first)] {
				lowercaseStarts++
				signalCount++
			}
		}
	}
	if lowercaseStarts >= 5 {
		signals = append(signals, fmt.Sprintf("%d text lines starting with lowercase", lowercaseStarts))
	}

	if len(signals) < 2 || signalCount < 5 {
		return nil
	}
	evidence := strings.Join(signals, "; ")
	if len(brokenExamples) > 0 {
		n := len(brokenExamples)
		if n > 2 {
			n = 2
		}
		evidence += ". Examples: " + strings.Join(brokenExamples[:n], " | ")
	}
	return []IntegrityIssue{{
		Severity:    SeverityCritical,
		Category:    "INTERLEAVED_TEXT_CORRUPTION",
		Description: "Severe text interleaving detected, document appears to mix overlapping text columns",
		Evidence:    evidence,
	}}
}

func fragmentationIssues(text string) []IntegrityIssue {
	var issues []IntegrityIssue

	if m := singleLetterLinePattern.FindAllString(text, -1); len(m) > 50 {
		examples := make([]string, 0, 3)
		for _, s := range m[:3] {
			examples = append(examples, strings.TrimSpace(s))
		}
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityCritical,
			Category:    "TEXT_FRAGMENTATION",
			Description: fmt.Sprintf("Detected %d single capital letters at line breaks, possible text fragmentation", len(m)),
			Evidence:    "Examples: " + strings.Join(examples, ", "),
		})
	}

	fragments := 0
	var examples []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if len(s) <= 5 || len(s) >= 30 {
			continue
		}
		if strings.ContainsAny(s[len(s)-1:], ".!?:;") {
			continue
		}
		if !strings.ContainsFunc(s, isASCIILetter) || formLabelPattern.MatchString(s) {
			continue
		}
		fragments++
		if len(examples) < 3 {
			examples = append(examples, s)
		}
	}
	if fragments > 75 {
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityCritical,
			Category:    "TEXT_FRAGMENTATION",
			Description: fmt.Sprintf("Detected %d incomplete text fragments, document may be corrupted", fragments),
			Evidence:    "Examples: " + strings.Join(examples, " | "),
		})
	}
	return issues
}

func continuityIssues(text string) []IntegrityIssue {
	var issues []IntegrityIssue

	if m := excessiveSpacingPattern.FindAllString(text, -1); len(m) > 50 {
		examples := make([]string, 0, 3)
		for _, s := range m[:3] {
			examples = append(examples, strings.TrimSpace(s))
		}
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityCritical,
			Category:    "NON_CONTIGUOUS_FLOW",
			Description: fmt.Sprintf("Detected %d instances of excessive spacing, text flow disrupted", len(m)),
			Evidence:    "Examples: " + strings.Join(examples, " | "),
		})
	}

	open := strings.Count(text, "(")
	closed := strings.Count(text, ")")
	diff := open - closed
	if diff < 0 {
		diff = -diff
	}
	if diff > 30 {
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityWarning,
			Category:    "NON_CONTIGUOUS_FLOW",
			Description: fmt.Sprintf("Unbalanced parentheses: %d open, %d close, possible text corruption", open, closed),
			Evidence:    fmt.Sprintf("Difference: %d", diff),
		})
	}
	return issues
}

func missingSectionIssues(text string) []IntegrityIssue {
	var missing []string
	for _, section := range requiredSectionPatterns {
		found := false
		for _, p := range section.patterns {
			if p.MatchString(text) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, section.name)
		}
	}
	// One or two absent sections happens on short or oddly phrased forms;
	// all three absent means the text is not an LOA at all.
	if len(missing) < len(requiredSectionPatterns) {
		return nil
	}
	return []IntegrityIssue{{
		Severity:    SeverityCritical,
		Category:    "MISSING_SECTIONS",
		Description: fmt.Sprintf("Missing all %d required sections: %s", len(missing), strings.Join(missing, ", ")),
		Evidence:    "Document appears completely corrupted or interleaved",
	}}
}

func repeatedFragmentIssues(text string) []IntegrityIssue {
	counts := make(map[string]int)
	for _, sentence := range sentenceSplitPattern.Split(text, -1) {
		s := strings.ToLower(strings.TrimSpace(sentence))
		if len(s) > 30 {
			counts[s]++
		}
	}
	var duplicates []string
	for s, c := range counts {
		if c > 1 {
			duplicates = append(duplicates, s)
		}
	}
	if len(duplicates) <= 30 {
		return nil
	}
	sort.Strings(duplicates)
	examples := make([]string, 0, 2)
	for _, s := range duplicates[:2] {
		if len(s) > 50 {
			s = s[:50]
		}
		examples = append(examples, s)
	}
	return []IntegrityIssue{{
		Severity:    SeverityWarning,
		Category:    "REPEATED_CONTENT",
		Description: fmt.Sprintf("Detected %d repeated text segments, possible page duplication", len(duplicates)),
		Evidence:    "Examples: " + strings.Join(examples, " | "),
	}}
}

func characterCorruptionIssues(text string) []IntegrityIssue {
	var issues []IntegrityIssue

	if m := specialCharRunPattern.FindAllString(text, -1); len(m) > 50 {
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityWarning,
			Category:    "CHARACTER_CORRUPTION",
			Description: fmt.Sprintf("Detected %d sequences of special characters", len(m)),
			Evidence:    "Examples: " + strings.Join(m[:3], " | "),
		})
	}
	if m := nonASCIIRunPattern.FindAllString(text, -1); len(m) > 30 {
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityWarning,
			Category:    "CHARACTER_CORRUPTION",
			Description: fmt.Sprintf("Detected %d sequences of unusual characters, possible encoding issues", len(m)),
			Evidence:    "Found non-ASCII character sequences",
		})
	}
	return issues
}

func pageOrderIssues(pages []ocr.Page) []IntegrityIssue {
	if len(pages) < 2 {
		return nil
	}
	nums := make([]int, 0, len(pages))
	seen := make(map[int]bool, len(pages))
	duplicate := false
	for _, p := range pages {
		if seen[p.Number] {
			duplicate = true
		}
		seen[p.Number] = true
		nums = append(nums, p.Number)
	}

	var issues []IntegrityIssue
	if duplicate {
		issues = append(issues, IntegrityIssue{
			Severity:    SeverityCritical,
			Category:    "PAGE_ORDER_ISSUE",
			Description: "Duplicate page numbers detected, possible interleaved pages",
			Evidence:    fmt.Sprintf("Page numbers: %v", nums),
		})
	}
	sort.Ints(nums)
	for i := 0; i+1 < len(nums); i++ {
		if nums[i+1]-nums[i] > 1 {
			issues = append(issues, IntegrityIssue{
				Severity:    SeverityWarning,
				Category:    "PAGE_ORDER_ISSUE",
				Description: fmt.Sprintf("Gap in page sequence: %d to %d", nums[i], nums[i+1]),
				Evidence:    "Pages may be missing or out of order",
			})
		}
	}
	return issues
}

// integrityConfidence starts at 1.0 and charges 0.15 per critical issue and
// 0.05 per warning, clamped to [0, 1] and rounded to two decimals.
func integrityConfidence(issues []IntegrityIssue) float64 {
	penalty := 0.0
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			penalty += 0.15
		default:
			penalty += 0.05
		}
	}
	c := 1.0 - penalty
	if c < 0 {
		c = 0
	}
	return math.Round(c*100) / 100
}

func integritySummary(f IntegrityFindings) string {
	if f.IsValid && f.WarningCount == 0 {
		return "Document integrity verified"
	}
	if f.IsValid {
		return fmt.Sprintf("Document appears valid but has %d warning(s), review recommended", f.WarningCount)
	}
	categories := make(map[string]bool)
	for _, issue := range f.Issues {
		if issue.Severity == SeverityCritical {
			categories[issue.Category] = true
		}
	}
	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)
	summary := fmt.Sprintf("Document integrity compromised: %d critical issue(s) (%s)", f.CriticalCount, strings.Join(names, ", "))
	if f.WarningCount > 0 {
		summary += fmt.Sprintf("; %d warning(s)", f.WarningCount)
	}
	return summary
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
