package loacheck

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/vision"
)

const signatureDatePrompt = `Extract the CUSTOMER signature date from this Letter of Authorization page.

Documents often carry two signature sections: the customer section (usually at
the bottom, near the customer name, address, and phone fields) and a
supplier/broker section. Only the customer date counts. Never return a date
from a section labeled "Supplier", "Broker", or "Third Party Representative".

Handwritten years are frequently misread (3 vs 5, 0 vs 6). If the year looks
uncertain, lower year_confidence and suggest the alternate reading.

Required JSON schema:
{
  "customer_signature_date": "MM/DD/YYYY or null",
  "date_found": true,
  "confidence": 0,
  "location_description": "string",
  "reasoning": "string",
  "year_confidence": 0,
  "possible_alternate_year": "YYYY or null"
}`

// yearConfidenceFloor is the threshold below which a suggested alternate year
// replaces the extracted one.
const yearConfidenceFloor = 95

// SignatureDateExtractor produces a customer signature date for one page
// image. Implementations must distinguish "no date on the form" (Found=false,
// nil error) from extraction failure (non-nil error).
type SignatureDateExtractor interface {
	ExtractCustomerSignatureDate(ctx context.Context, pageImage []byte) (SignatureDateFinding, vision.Metrics, error)
}

// VisionDateExtractor asks the vision oracle for the customer signature date
// and applies the handwritten-year auto-correction.
type VisionDateExtractor struct {
	exec *vision.Executor
}

func NewVisionDateExtractor(exec *vision.Executor) *VisionDateExtractor {
	return &VisionDateExtractor{exec: exec}
}

func (v *VisionDateExtractor) ExtractCustomerSignatureDate(ctx context.Context, pageImage []byte) (SignatureDateFinding, vision.Metrics, error) {
	var finding SignatureDateFinding
	metrics, err := v.exec.Extract(ctx, "signature-date", signatureDatePrompt, pageImage, &finding, func() error {
		if finding.Found && finding.Date == "" {
			return fmt.Errorf("date_found is true but customer_signature_date is empty")
		}
		return nil
	})
	if err != nil {
		return SignatureDateFinding{}, metrics, err
	}
	finding.Date = correctHandwrittenYear(finding)
	return finding, metrics, nil
}

// correctHandwrittenYear swaps in the oracle's alternate year when its
// confidence in the written year is low.
func correctHandwrittenYear(f SignatureDateFinding) string {
	if f.Date == "" || f.AlternateYear == "" || f.YearConfidence >= yearConfidenceFloor {
		return f.Date
	}
	parsed, err := time.Parse("01/02/2006", f.Date)
	if err != nil {
		return f.Date
	}
	year, err := strconv.Atoi(f.AlternateYear)
	if err != nil {
		return f.Date
	}
	return time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC).Format("01/02/2006")
}
