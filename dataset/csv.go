package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV parses a CSV stream into a Table. The first record is the header.
// A UTF-8 byte order mark, common in spreadsheet exports, is stripped before
// parsing. Column kinds are inferred from the cell values.
func ReadCSV(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	reader := csv.NewReader(decoded)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		for i := range columns {
			columns[i].Values = append(columns[i].Values, record[i])
		}
	}

	for i := range columns {
		columns[i].Kind = InferKind(columns[i].Values)
	}

	return NewTable(columns)
}
