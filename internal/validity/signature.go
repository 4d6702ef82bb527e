package validity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// The fixed divisors below reproduce the upstream convention for converting
// day counts to months and years. They are an approximation, kept bit-for-bit
// so accept/reject outcomes match the historical behavior.
const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// ValidityResult reports whether a signature is still inside its regulatory
// window. Numeric fields are nil when the date could not be assessed.
type ValidityResult struct {
	IsValid          bool     `json:"is_valid"`
	Reason           string   `json:"reason"`
	DaysOld          *int     `json:"days_old"`
	MonthsOld        *float64 `json:"months_old"`
	YearsOld         *float64 `json:"years_old"`
	StateLimitMonths *int     `json:"state_limit_months"`
	SignatureDate    string   `json:"signature_date,omitempty"`
	TodayDate        string   `json:"today_date,omitempty"`
}

// CalculateSignatureValidity determines whether rawDate is within the
// validity window for the given jurisdiction as of now. It never panics and
// never returns an error: every failure mode degrades to IsValid=false with a
// reason the decision layer can report verbatim.
func CalculateSignatureValidity(rawDate, state, utility string, region Region, now time.Time) (result ValidityResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ValidityResult{Reason: fmt.Sprintf("Error calculating signature validity: %v", r)}
		}
	}()

	if strings.TrimSpace(rawDate) == "" {
		return ValidityResult{Reason: "No signature date provided"}
	}
	signed, err := ParseFlexibleDate(rawDate)
	if err != nil {
		return ValidityResult{Reason: fmt.Sprintf("Could not parse signature date: %s", rawDate)}
	}

	days := daysBetween(signed, now)
	months := float64(days) / daysPerMonth
	years := float64(days) / daysPerYear
	rule := ResolveRule(region, state, utility)

	// The limit comparison uses the unrounded month count; only the reported
	// values are rounded to one decimal.
	valid := months <= float64(rule.PeriodMonths)
	verb := "within"
	if !valid {
		verb = "exceeds"
	}

	monthsRounded := roundTenth(months)
	yearsRounded := roundTenth(years)
	limit := rule.PeriodMonths
	return ValidityResult{
		IsValid:          valid,
		Reason:           fmt.Sprintf("Signature is %.1f months old, %s %s %d-month limit", months, verb, rule.Label, rule.PeriodMonths),
		DaysOld:          &days,
		MonthsOld:        &monthsRounded,
		YearsOld:         &yearsRounded,
		StateLimitMonths: &limit,
		SignatureDate:    formatDate(signed),
		TodayDate:        formatDate(now),
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
