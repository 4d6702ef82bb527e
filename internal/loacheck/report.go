package loacheck

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

func buildMarkdown(env ResponseEnvelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# LOA Validation Report\n\n")
	fmt.Fprintf(&b, "- Case ID: %s\n", env.CaseID)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))

	fmt.Fprintf(&b, "## Decision\n\n")
	fmt.Fprintf(&b, "Overall decision: **%s**.\n\n", env.Decision)
	if len(env.RejectionReasons) > 0 {
		fmt.Fprintf(&b, "Rejection reasons:\n\n")
		for _, r := range env.RejectionReasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Signature Validity\n\n")
	if env.SignatureDate != "" {
		fmt.Fprintf(&b, "- Signature date: `%s`\n", env.SignatureDate)
	} else {
		fmt.Fprintf(&b, "- Signature date: not found\n")
	}
	fmt.Fprintf(&b, "- Valid: `%t`\n", env.Validity.IsValid)
	fmt.Fprintf(&b, "- Reason: %s\n", sanitizeLine(env.Validity.Reason))
	if env.Validity.DaysOld != nil {
		fmt.Fprintf(&b, "- Age: %d days", *env.Validity.DaysOld)
		if env.Validity.MonthsOld != nil {
			fmt.Fprintf(&b, " (%.1f months)", *env.Validity.MonthsOld)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Expiration\n\n")
	if env.Expiration.ExpirationDateFormatted != "" {
		fmt.Fprintf(&b, "- Expiration date: `%s`\n", env.Expiration.ExpirationDateFormatted)
	} else {
		fmt.Fprintf(&b, "- Expiration date: not computable\n")
	}
	fmt.Fprintf(&b, "- Expired: `%t`\n", env.Expiration.IsExpired)
	if env.Expiration.RuleUsed != "" {
		fmt.Fprintf(&b, "- Rule applied: %s\n", env.Expiration.RuleUsed)
	}
	if env.Expiration.DaysUntilExpiration != nil {
		fmt.Fprintf(&b, "- Days until expiration: %d\n", *env.Expiration.DaysUntilExpiration)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Checks\n\n")
	fmt.Fprintf(&b, "| Check | Result | Detail |\n|---|---|---|\n")
	for _, c := range env.Checks {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Name, passFail(c.Passed), sanitizeLine(c.Detail))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Appendix\n\n")
	fmt.Fprintf(&b, "### Validity Result (JSON)\n\n```json\n%s\n```\n", prettyJSON(env.Validity))
	fmt.Fprintf(&b, "\n### Expiration Result (JSON)\n\n```json\n%s\n```\n", prettyJSON(env.Expiration))
	fmt.Fprintf(&b, "\n### Pipeline Metadata (JSON)\n\n```json\n%s\n```\n", prettyJSON(env.PipelineMetadata))

	return b.String()
}

func passFail(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return s
}
