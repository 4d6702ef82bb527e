package ocr

import "strings"

// FullText returns the document text: the service-provided content when
// present, otherwise the page lines joined in reading order.
func (r *AnalyzeResult) FullText() string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	var b strings.Builder
	for _, p := range r.Pages {
		for _, l := range p.Lines {
			b.WriteString(l.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FieldValue finds the first key-value pair whose key contains keyPart,
// compared case-insensitively. OCR keys carry inconsistent punctuation and
// trailing colons, so substring matching is the reliable form here.
func (r *AnalyzeResult) FieldValue(keyPart string) (string, bool) {
	if r == nil {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(keyPart))
	if needle == "" {
		return "", false
	}
	for _, kv := range r.KeyValuePairs {
		if strings.Contains(strings.ToLower(kv.Key), needle) {
			v := strings.TrimSpace(kv.Value)
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// AllSelectionMarks gathers the selection marks from every page.
func (r *AnalyzeResult) AllSelectionMarks() []SelectionMark {
	if r == nil {
		return nil
	}
	var marks []SelectionMark
	for _, p := range r.Pages {
		marks = append(marks, p.SelectionMarks...)
	}
	return marks
}
