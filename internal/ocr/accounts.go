package ocr

import (
	"fmt"
	"regexp"
	"strings"
)

// accountNumberPatterns maps a UDC code to the regex matching its account
// number format in OCR text. Ranges are wide on purpose: OCR drops and merges
// digits, and rejecting a real account costs far more than a stray capture.
var accountNumberPatterns = map[string]*regexp.Regexp{
	"CEI":     regexp.MustCompile(`\b\d{11,25}\b`),
	"OE":      regexp.MustCompile(`\b\d{11,25}\b`),
	"TE":      regexp.MustCompile(`\b\d{11,25}\b`),
	"AEP":     regexp.MustCompile(`\b\d{11,25}\b`),
	"CSPC":    regexp.MustCompile(`\b\d{11,25}\b`),
	"OPC":     regexp.MustCompile(`\b\d{11,25}\b`),
	"COMED":   regexp.MustCompile(`\b\d{8,25}\b`),
	"AMEREN":  regexp.MustCompile(`\b\d{8,25}\b`),
	"DAYTON":  regexp.MustCompile(`\b(?:\d{11,30}|\d{8,15}[Zz]?\d{8,12})\b`),
	"DPL":     regexp.MustCompile(`\b(?:\d{11,30}|\d{8,15}[Zz]?\d{8,12})\b`),
	"DUKE":    regexp.MustCompile(`\b(?:\d{11,30}|\d{8,15}[Zz]?\d{8,12})\b`),
	"CINERGY": regexp.MustCompile(`\b(?:\d{11,30}|\d{8,15}[Zz]?\d{8,12})\b`),
}

var defaultAccountPattern = regexp.MustCompile(`\b\d{8,}\b`)

// Duke/Cinergy accounts embed a "Z" around position 13 that OCR frequently
// reads as "2"; the extra patterns capture both renderings.
var (
	dukeLongPattern = regexp.MustCompile(`\b\d{20,25}\b`)
	dukeZPattern    = regexp.MustCompile(`\b\d{10,15}Z\d{8,12}\b`)
)

// ExtractAccountNumbers pulls candidate account numbers for a UDC out of OCR
// text, deduplicated in first-seen order.
func ExtractAccountNumbers(text, udc string) []string {
	code := strings.ToUpper(strings.TrimSpace(udc))
	pattern, ok := accountNumberPatterns[code]
	if !ok {
		pattern = defaultAccountPattern
	}
	found := pattern.FindAllString(text, -1)
	if code == "DUKE" || code == "CINERGY" {
		found = append(found, dukeLongPattern.FindAllString(text, -1)...)
		found = append(found, dukeZPattern.FindAllString(strings.ToUpper(text), -1)...)
	}
	return dedupe(found)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizeAccountFlexible reduces an account number to digits for
// comparison, treating the Duke/Cinergy "Z" and a misread "2" as equivalent.
func NormalizeAccountFlexible(acc string) string {
	upper := strings.ToUpper(acc)
	if strings.Contains(upper, "Z") || (len(acc) == 23 && (acc[12] == 'Z' || acc[12] == 'z' || acc[12] == '2')) {
		upper = strings.ReplaceAll(upper, "Z", "2")
	}
	return nonDigits.ReplaceAllString(upper, "")
}

var aepSlashPattern = regexp.MustCompile(`\b\d{10,12}/\d{16,18}\b`)

// ValidateAEPAccountFormat checks one AEP account against the two accepted
// shapes: a standalone 16-18 digit number, or the slash form
// "10-12 digits / 16-18 digits". The width tolerance absorbs OCR digit
// drops around the nominal 17 and 11/17 lengths.
func ValidateAEPAccountFormat(account string) (bool, string) {
	acc := strings.TrimSpace(account)
	if strings.Contains(acc, "/") {
		parts := strings.Split(acc, "/")
		if len(parts) != 2 {
			return false, "(multiple slashes)"
		}
		left := nonDigits.ReplaceAllString(parts[0], "")
		right := nonDigits.ReplaceAllString(parts[1], "")
		if len(left) >= 10 && len(left) <= 12 && len(right) >= 16 && len(right) <= 18 {
			return true, ""
		}
		return false, fmt.Sprintf("(%d/%d digits, expected 10-12/16-18)", len(left), len(right))
	}
	digits := nonDigits.ReplaceAllString(acc, "")
	if len(digits) >= 16 && len(digits) <= 18 {
		return true, ""
	}
	return false, fmt.Sprintf("(%d digits, expected 16-18)", len(digits))
}

// ExtractAEPAccounts extracts AEP accounts including the slash form and
// splits them into format-valid and format-invalid groups.
func ExtractAEPAccounts(text string) (valid, invalid []string) {
	raw := accountNumberPatterns["AEP"].FindAllString(text, -1)
	raw = append(raw, aepSlashPattern.FindAllString(text, -1)...)
	for _, acc := range dedupe(raw) {
		if ok, reason := ValidateAEPAccountFormat(acc); ok {
			valid = append(valid, acc)
		} else {
			invalid = append(invalid, acc+" "+reason)
		}
	}
	return valid, invalid
}
