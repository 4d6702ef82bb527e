package loacheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
)

// --- signature date fallback ---

// signatureDateFieldKeys are tried in order against the OCR key-value pairs
// when no vision extraction is available. The customer field must be tried
// before any bare "date" key so a supplier date never wins.
var signatureDateFieldKeys = []string{
	"customer signature date",
	"customer date",
	"signature date",
	"date signed",
}

var looseDatePattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)

// signatureDateFromLayout pulls a signature date candidate out of OCR
// key-value pairs, falling back to the first date-shaped token near a
// "signature" mention in the flattened text.
func signatureDateFromLayout(layout *ocr.AnalyzeResult, text string) string {
	for _, key := range signatureDateFieldKeys {
		if v, ok := layout.FieldValue(key); ok {
			return v
		}
	}
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "customer signature")
	if idx < 0 {
		idx = strings.Index(lower, "signature")
	}
	if idx < 0 {
		return ""
	}
	window := text[idx:]
	if len(window) > 200 {
		window = window[:200]
	}
	return looseDatePattern.FindString(window)
}

// --- handwritten initials detection ---

// InitialBox is one detected initial box in the document text.
type InitialBox struct {
	Text     string `json:"text"`
	Context  string `json:"context"`
	IsFilled bool   `json:"is_filled"`
}

// InitialFindings summarizes the handwritten-initial scan of one document.
type InitialFindings struct {
	Boxes         []InitialBox `json:"initial_boxes"`
	EmptyBoxes    int          `json:"empty_boxes"`
	ValidInitials int          `json:"valid_initials"`
	XMarks        int          `json:"x_marks"`
}

var initialBoxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Initial\s+[Bb]ox[^:]*:\s*\n?\s*([A-Za-z]{1,3})\s`),
	regexp.MustCompile(`(?m)^([A-Za-z]{1,3})\s+(?:Account|Interval|Historical|Energy|Usage|Data|Release)`),
	regexp.MustCompile(`[\[\]☐☑✓✗]\s*([A-Za-z]{1,3})\s`),
	regexp.MustCompile(`(?m)^([A-Z]{1,3})\s+Account/SDI\s+Number\s+Release`),
	regexp.MustCompile(`\n([A-Za-z0-9]{1,3})\nAccount/SDI`),
}

var emptyInitialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)Initial[^:]*:\s*_{1,}`),
	regexp.MustCompile(`(?mi)_{3,}\s*(?:Initial|Initials)`),
}

var xMarkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[Xx]\s+(?:Account|Interval|Historical)`),
	regexp.MustCompile(`(?i):selected:\s*[Xx]`),
	regexp.MustCompile(`(?i)Initial\s+Box[^:]*:\s*[Xx]`),
}

// Common short words the box patterns pick up that are never initials.
var initialFalsePositives = map[string]struct{}{
	"An": {}, "By": {}, "In": {}, "On": {}, "At": {}, "To": {}, "Of": {},
	"Or": {}, "If": {}, "As": {}, "Is": {}, "It": {}, "We": {}, "ID": {},
}

// DetectInitials scans document text for initial boxes: filled boxes with
// letter initials, empty underscore boxes, and X marks standing in for
// initials.
func DetectInitials(text string) InitialFindings {
	findings := InitialFindings{}

	for _, re := range emptyInitialPatterns {
		for _, m := range re.FindAllString(text, -1) {
			findings.Boxes = append(findings.Boxes, InitialBox{Context: m, IsFilled: false})
			findings.EmptyBoxes++
		}
	}

	for _, re := range initialBoxPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			initialText := strings.TrimSpace(text[m[2]:m[3]])
			if _, skip := initialFalsePositives[initialText]; skip {
				continue
			}
			start := m[0] - 50
			if start < 0 {
				start = 0
			}
			end := m[1] + 100
			if end > len(text) {
				end = len(text)
			}
			findings.Boxes = append(findings.Boxes, InitialBox{
				Text:     initialText,
				Context:  strings.ReplaceAll(text[start:end], "\n", " "),
				IsFilled: true,
			})
			if !strings.EqualFold(initialText, "X") {
				findings.ValidInitials++
			}
		}
	}

	for _, re := range xMarkPatterns {
		findings.XMarks += len(re.FindAllString(text, -1))
	}
	return findings
}

// --- selection mark validation ---

// SelectionFindings summarizes checkbox state for one document.
type SelectionFindings struct {
	TotalMarks    int      `json:"total_marks"`
	SelectedMarks int      `json:"selected_marks"`
	EmptyBoxes    int      `json:"empty_boxes"`
	XMarks        int      `json:"x_marks"`
	ValidInitials int      `json:"valid_initials"`
	Issues        []string `json:"issues"`
}

// ValidateSelectionMarks combines OCR selection-mark state with the text
// scan. X marks in initial boxes are invalid on Ohio forms; the New England
// forms accept them, so there they are noted without failing the check.
func ValidateSelectionMarks(marks []ocr.SelectionMark, text string, strictInitials bool) SelectionFindings {
	findings := SelectionFindings{TotalMarks: len(marks)}
	for _, m := range marks {
		switch m.State {
		case ocr.MarkSelected:
			findings.SelectedMarks++
		case ocr.MarkUnselected:
			findings.EmptyBoxes++
		}
	}

	initials := DetectInitials(text)
	findings.XMarks = initials.XMarks
	findings.ValidInitials = initials.ValidInitials

	if findings.XMarks > 0 {
		if strictInitials {
			findings.Issues = append(findings.Issues, fmt.Sprintf("Found %d X marks in initial boxes (letter initials required)", findings.XMarks))
		} else {
			findings.Issues = append(findings.Issues, fmt.Sprintf("Found %d X marks in initial boxes", findings.XMarks))
		}
	}
	if findings.EmptyBoxes > 0 {
		findings.Issues = append(findings.Issues, fmt.Sprintf("Found %d empty/unselected boxes", findings.EmptyBoxes))
	}
	if findings.ValidInitials == 0 && findings.TotalMarks > 0 {
		findings.Issues = append(findings.Issues, "No valid letter initials detected")
	}
	return findings
}

// --- customer name comparison ---

var namePunctuation = regexp.MustCompile(`[,.\-'"()]`)

// normalizeCustomerName strips punctuation, collapses whitespace, and
// lowercases so "Engineered Profiles, LLC" matches "engineered profiles llc".
func normalizeCustomerName(name string) string {
	cleaned := namePunctuation.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(strings.ToLower(cleaned)), " ")
}

// CompareCustomerNames checks the account name on file against the customer
// name on the LOA. Containment either way counts as a match: LOAs routinely
// carry a longer or shorter rendering of the same business name.
func CompareCustomerNames(expected, found string) (bool, string) {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(found) == "" {
		return false, "Missing customer name - either the account on file or the LOA name is empty"
	}
	e, f := normalizeCustomerName(expected), normalizeCustomerName(found)
	if e == f {
		return true, "exact match after normalization"
	}
	if strings.Contains(e, f) || strings.Contains(f, e) {
		return true, "partial match after normalization"
	}
	return false, fmt.Sprintf("Customer name mismatch: account on file is %q but LOA shows %q", expected, found)
}

// --- account number comparison ---

// MatchAccounts verifies every expected account number appears in the
// document, comparing digit-normalized forms only (no fuzzy matching).
// Returns the accounts that could not be found.
func MatchAccounts(expected, extracted []string) []string {
	seen := make(map[string]struct{}, len(extracted))
	for _, acc := range extracted {
		seen[ocr.NormalizeAccountFlexible(acc)] = struct{}{}
	}
	var missing []string
	for _, want := range expected {
		if _, ok := seen[ocr.NormalizeAccountFlexible(want)]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
