package validity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ExpirationResult carries the authoritative expiration date of an
// authorization and how it was derived. ExpirationDate is nil when the
// signature date could not be assessed.
type ExpirationResult struct {
	ExpirationDate           *time.Time `json:"expiration_date"`
	ExpirationDateFormatted  string     `json:"expiration_date_formatted"`
	MonthsUntilExpiration    *float64   `json:"months_until_expiration"`
	DaysUntilExpiration      *int       `json:"days_until_expiration"`
	ExpirationMonthsUsed     *int       `json:"expiration_months_used"`
	RuleUsed                 string     `json:"rule_used"`
	ExplicitExpirationFound  bool       `json:"explicit_expiration_found"`
	ExplicitExpirationMonths *int       `json:"explicit_expiration_months"`
	IsExpired                bool       `json:"is_expired"`
	CalculationDetails       string     `json:"calculation_details,omitempty"`
}

// explicitExpirationPatterns are tried in order against the document text;
// the first numeric capture wins. LOAs phrase their own expiration a handful
// of ways and these cover the forms seen in production documents.
var explicitExpirationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)expires?\s+(?:in\s+|after\s+)?(\d{1,3})\s+months`),
	regexp.MustCompile(`(?i)valid\s+for\s+(\d{1,3})\s+months`),
	regexp.MustCompile(`(?i)expires?\s+(\d{1,3})\s+months\s+(?:from|after)`),
	regexp.MustCompile(`(?i)this\s+authorization\s+will\s+expire\s+(?:in\s+)?(\d{1,3})\s+months`),
	regexp.MustCompile(`(?i)loa\s+will\s+expire\s+(?:in\s+)?(\d{1,3})\s+months`),
}

// gsecoExpirationMonths covers Granite State Electric, whose LOAs always state
// the authorization runs one year from the sign date. The phrasing on those
// forms ("valid one year from the sign date") never carries a month count, so
// the utility itself is the trigger rather than a text pattern.
const gsecoExpirationMonths = 12

// findExplicitExpiration scans document text for a stated expiration period.
// Returns (months, true) when the document overrides the jurisdiction default.
func findExplicitExpiration(utility, documentText string) (int, bool) {
	if strings.ToUpper(strings.TrimSpace(utility)) == "GSECO" {
		return gsecoExpirationMonths, true
	}
	for _, re := range explicitExpirationPatterns {
		m := re.FindStringSubmatch(documentText)
		if m == nil {
			continue
		}
		months, err := strconv.Atoi(m[1])
		if err != nil || months <= 0 {
			continue
		}
		return months, true
	}
	return 0, false
}

// CalculateLOAExpiration computes the authoritative expiration date for an
// authorization: the signature date plus either an expiration period the
// document itself states or, failing that, the jurisdiction rule. Like
// CalculateSignatureValidity it never panics and never returns an error.
func CalculateLOAExpiration(rawDate, state, utility, documentText string, region Region, now time.Time) (result ExpirationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ExpirationResult{
				ExpirationDateFormatted: "Error calculating LOA expiration",
				CalculationDetails:      fmt.Sprintf("Error calculating LOA expiration: %v", r),
			}
		}
	}()

	if strings.TrimSpace(rawDate) == "" {
		return ExpirationResult{ExpirationDateFormatted: "No signature date provided"}
	}
	signed, err := ParseFlexibleDate(rawDate)
	if err != nil {
		return ExpirationResult{ExpirationDateFormatted: fmt.Sprintf("Could not parse signature date: %s", rawDate)}
	}

	res := ExpirationResult{}
	months, found := findExplicitExpiration(utility, documentText)
	if found {
		res.ExplicitExpirationFound = true
		res.ExplicitExpirationMonths = &months
		res.RuleUsed = fmt.Sprintf("Explicit statement in document: %d months", months)
	} else {
		rule := ResolveRule(region, state, utility)
		months = rule.PeriodMonths
		res.RuleUsed = fmt.Sprintf("State/Utility rule: %s", rule.Label)
	}
	res.ExpirationMonthsUsed = &months

	expiration := addMonthsClamped(signed, months)
	daysUntil := daysBetween(now, expiration)
	monthsUntil := float64(daysUntil) / daysPerMonth

	res.ExpirationDate = &expiration
	res.ExpirationDateFormatted = formatDate(expiration)
	res.DaysUntilExpiration = &daysUntil
	res.MonthsUntilExpiration = &monthsUntil
	res.IsExpired = daysUntil <= 0
	return res
}
