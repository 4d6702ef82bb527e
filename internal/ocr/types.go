// Package ocr models the document-layout output of an upstream OCR service
// (pages, lines, selection marks, key-value pairs, tables) and provides the
// flattening and field extraction the validation pipeline consumes. The OCR
// service itself is external; this package only reads its result object.
package ocr

// AnalyzeResult is the layout analysis for one document.
type AnalyzeResult struct {
	Content       string         `json:"content,omitempty"`
	Pages         []Page         `json:"pages"`
	KeyValuePairs []KeyValuePair `json:"key_value_pairs,omitempty"`
	Tables        []Table        `json:"tables,omitempty"`
}

type Page struct {
	Number         int             `json:"page_number"`
	Lines          []Line          `json:"lines,omitempty"`
	SelectionMarks []SelectionMark `json:"selection_marks,omitempty"`
}

type Line struct {
	Text string `json:"text"`
}

// SelectionMark is a checkbox or initial box the layout engine recognized.
// State is "selected" or "unselected".
type SelectionMark struct {
	State      string  `json:"state"`
	Confidence float64 `json:"confidence,omitempty"`
}

const (
	MarkSelected   = "selected"
	MarkUnselected = "unselected"
)

type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
}

type Table struct {
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Cells       []TableCell `json:"cells"`
}

type TableCell struct {
	RowIndex    int    `json:"row_index"`
	ColumnIndex int    `json:"column_index"`
	Content     string `json:"content"`
}
