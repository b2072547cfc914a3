package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset is tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithComma switches the field delimiter, e.g. ';' for spreadsheet locales that use a decimal comma.
func WithComma(comma rune) CSVOption {
	return func(e *CSVExporter) { e.comma = comma }
}

// WithBOM prefixes output with a UTF-8 byte order mark so spreadsheet apps detect the encoding.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter renders a Dataset as CSV.
type CSVExporter struct {
	comma rune
	bom   bool
}

// NewCSVExporter builds a comma-separated exporter without BOM unless options say otherwise.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render returns the dataset as CSV bytes.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the dataset to w. Cells missing from a row are written empty.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	if e.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write csv bom: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = e.comma
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
