package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header and one record per row. Values containing the
// delimiter, quotes or line breaks are quoted, and a record made of a single
// empty field is written as "" so readers do not skip it as a blank line.
func WriteCSV(w io.Writer, f Frame) error {
	writer := csv.NewWriter(w)
	if err := writeRecord(w, writer, f.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(f.Columns))
	for i, row := range f.Rows {
		for j := range record {
			record[j] = row[j].String()
		}
		if err := writeRecord(w, writer, record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeRecord(w io.Writer, writer *csv.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}
