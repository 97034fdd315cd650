package export

import (
	"bytes"
	"fmt"
	"strings"
)

// Column describes a single export column. Quoted columns are always wrapped
// in double quotes regardless of content.
type Column struct {
	Header string
	Quoted bool
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Headers are written
// verbatim; cell quoting follows the column definition rather than content
// sniffing so the output layout stays stable.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}

	buf := &bytes.Buffer{}

	headers := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headers[i] = col.Header
	}
	buf.WriteString(strings.Join(headers, ","))
	buf.WriteString("\n")

	for _, row := range data.Rows {
		cells := make([]string, len(data.Columns))
		for i, col := range data.Columns {
			value := row[col.Header]
			if col.Quoted {
				value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
			}
			cells[i] = value
		}
		buf.WriteString(strings.Join(cells, ","))
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}
