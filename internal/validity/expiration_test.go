package validity

import (
	"strings"
	"testing"
	"time"
)

func TestCalculateLOAExpirationIllinoisDefault(t *testing.T) {
	now := date(2024, 6, 1)
	res := CalculateLOAExpiration("06/01/2024", "IL", "", "", GreatLakes, now)
	if res.ExpirationDate == nil || !res.ExpirationDate.Equal(date(2024, 12, 1)) {
		t.Fatalf("expiration_date = %v, want 12/01/2024", res.ExpirationDate)
	}
	if res.ExpirationDateFormatted != "12/01/2024" {
		t.Fatalf("formatted = %q", res.ExpirationDateFormatted)
	}
	if res.IsExpired {
		t.Fatal("six months out must not be expired")
	}
	if res.ExplicitExpirationFound {
		t.Fatal("no override in empty document text")
	}
	if res.ExpirationMonthsUsed == nil || *res.ExpirationMonthsUsed != 6 {
		t.Fatalf("expiration_months_used = %v, want 6", res.ExpirationMonthsUsed)
	}
	if res.RuleUsed != "State/Utility rule: Illinois (6 months)" {
		t.Fatalf("rule_used = %q", res.RuleUsed)
	}
	if res.DaysUntilExpiration == nil || *res.DaysUntilExpiration != 183 {
		t.Fatalf("days_until_expiration = %v, want 183", res.DaysUntilExpiration)
	}
}

func TestCalculateLOAExpirationGSECOSpecialCase(t *testing.T) {
	text := "Customer's signature are valid one year from the sign date"
	res := CalculateLOAExpiration("01/01/2023", "NH", "GSECO", text, NewEngland, date(2024, 6, 1))
	if !res.ExplicitExpirationFound {
		t.Fatal("GSECO documents always carry the one-year statement")
	}
	if res.ExplicitExpirationMonths == nil || *res.ExplicitExpirationMonths != 12 {
		t.Fatalf("explicit_expiration_months = %v, want 12", res.ExplicitExpirationMonths)
	}
	if res.ExpirationDate == nil || !res.ExpirationDate.Equal(date(2024, 1, 1)) {
		t.Fatalf("expiration_date = %v, want 01/01/2024", res.ExpirationDate)
	}
	if !res.IsExpired {
		t.Fatal("five months past expiration must report expired")
	}
	if res.RuleUsed != "Explicit statement in document: 12 months" {
		t.Fatalf("rule_used = %q", res.RuleUsed)
	}
}

func TestCalculateLOAExpirationExplicitOverridePrecedence(t *testing.T) {
	cases := []struct {
		text   string
		months int
	}{
		{"This authorization expires in 3 months.", 3},
		{"The LOA expires after 18 months from signing.", 18},
		{"This document is valid for 9 months.", 9},
		{"Authorization expires 24 months from the date signed.", 24},
		{"This authorization will expire in 6 months.", 6},
		{"The LOA will expire 4 months after execution.", 4},
		{"THE AUTHORIZATION EXPIRES IN 2 MONTHS", 2},
	}
	for _, c := range cases {
		res := CalculateLOAExpiration("01/01/2024", "OH", "", c.text, GreatLakes, date(2024, 1, 1))
		if !res.ExplicitExpirationFound {
			t.Fatalf("no override found in %q", c.text)
		}
		// Override always beats the Ohio 12-month default.
		if res.ExpirationMonthsUsed == nil || *res.ExpirationMonthsUsed != c.months {
			t.Fatalf("%q: months used = %v, want %d", c.text, res.ExpirationMonthsUsed, c.months)
		}
		if want := addMonthsClamped(date(2024, 1, 1), c.months); !res.ExpirationDate.Equal(want) {
			t.Fatalf("%q: expiration %v, want %v", c.text, res.ExpirationDate, want)
		}
	}
}

func TestCalculateLOAExpirationFirstPatternWins(t *testing.T) {
	// Two phrasings in the same document: the earlier pattern's capture wins.
	text := "This LOA expires in 3 months. It is also valid for 12 months."
	res := CalculateLOAExpiration("01/01/2024", "OH", "", text, GreatLakes, date(2024, 1, 1))
	if res.ExpirationMonthsUsed == nil || *res.ExpirationMonthsUsed != 3 {
		t.Fatalf("months used = %v, want 3", res.ExpirationMonthsUsed)
	}
}

func TestCalculateLOAExpirationMonthEndClamping(t *testing.T) {
	res := CalculateLOAExpiration("01/31/2024", "OH", "", "valid for 1 months", GreatLakes, date(2024, 1, 31))
	if res.ExpirationDate == nil || !res.ExpirationDate.Equal(date(2024, 2, 29)) {
		t.Fatalf("expiration_date = %v, want 02/29/2024 (leap-year clamp)", res.ExpirationDate)
	}
	res = CalculateLOAExpiration("01/31/2023", "OH", "", "valid for 1 months", GreatLakes, date(2023, 1, 31))
	if res.ExpirationDate == nil || !res.ExpirationDate.Equal(date(2023, 2, 28)) {
		t.Fatalf("expiration_date = %v, want 02/28/2023", res.ExpirationDate)
	}
}

func TestCalculateLOAExpirationExpiresToday(t *testing.T) {
	// daysUntil == 0 counts as expired.
	res := CalculateLOAExpiration("06/01/2024", "IL", "", "", GreatLakes, date(2024, 12, 1))
	if res.DaysUntilExpiration == nil || *res.DaysUntilExpiration != 0 {
		t.Fatalf("days_until_expiration = %v, want 0", res.DaysUntilExpiration)
	}
	if !res.IsExpired {
		t.Fatal("zero days remaining must report expired")
	}
}

func TestCalculateLOAExpirationMissingOrUnparseableDate(t *testing.T) {
	res := CalculateLOAExpiration("", "OH", "", "", GreatLakes, time.Now())
	if res.ExpirationDate != nil || res.ExpirationDateFormatted != "No signature date provided" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.DaysUntilExpiration != nil || res.MonthsUntilExpiration != nil || res.ExpirationMonthsUsed != nil {
		t.Fatalf("numeric fields must be nil: %+v", res)
	}

	res = CalculateLOAExpiration("garbage", "OH", "", "", GreatLakes, time.Now())
	if res.ExpirationDate != nil || !strings.Contains(res.ExpirationDateFormatted, "Could not parse signature date: garbage") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCalculateLOAExpirationUtilityRulePath(t *testing.T) {
	res := CalculateLOAExpiration("01/01/2024", "RI", "NECO", "", NewEngland, date(2024, 1, 1))
	if res.RuleUsed != "State/Utility rule: Rhode Island NECO (2 years)" {
		t.Fatalf("rule_used = %q", res.RuleUsed)
	}
	if res.ExpirationDate == nil || !res.ExpirationDate.Equal(date(2026, 1, 1)) {
		t.Fatalf("expiration_date = %v, want 01/01/2026", res.ExpirationDate)
	}
}
