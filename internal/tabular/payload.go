// Package tabular turns the worksheet snapshot sent by the dashboard host into
// the text context handed to the model.
package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const DefaultSheetName = "Unknown worksheet"

// Payload is the column/row snapshot of the worksheet the user is looking at.
// Rows are positional and may be shorter or longer than Columns.
type Payload struct {
	SheetName string
	Columns   []string
	Rows      [][]Cell
}

// Decode reads the loosely typed payload object. Absent, null and empty
// objects decode to a nil payload without error.
func Decode(raw json.RawMessage) (*Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &RenderError{Stage: "decode payload", Err: err}
	}
	if len(fields) == 0 {
		return nil, nil
	}

	payload := &Payload{SheetName: DefaultSheetName}
	if rawName, ok := fields["sheetName"]; ok {
		name, err := decodeSheetName(rawName)
		if err != nil {
			return nil, &RenderError{Stage: "decode sheet name", Err: err}
		}
		if name != "" {
			payload.SheetName = name
		}
	}

	if rawColumns, ok := fields["columns"]; ok {
		columns, err := decodeColumns(rawColumns)
		if err != nil {
			return nil, &RenderError{Stage: "decode columns", Err: err}
		}
		payload.Columns = columns
	}

	if rawRows, ok := fields["rows"]; ok {
		rows, err := decodeRows(rawRows)
		if err != nil {
			return nil, &RenderError{Stage: "decode rows", Columns: payload.Columns, Err: err}
		}
		payload.Rows = rows
	}
	return payload, nil
}

func decodeSheetName(raw json.RawMessage) (string, error) {
	var value any
	if err := decodeJSON(raw, &value); err != nil {
		return "", err
	}
	cell, err := cellFromJSON(value)
	if err != nil {
		return "", err
	}
	return cell.String(), nil
}

func decodeColumns(raw json.RawMessage) ([]string, error) {
	var values any
	if err := decodeJSON(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, nil
	}
	list, ok := values.([]any)
	if !ok {
		return nil, fmt.Errorf("columns must be a list, got %s", jsonTypeName(values))
	}
	columns := make([]string, 0, len(list))
	for i, value := range list {
		cell, err := cellFromJSON(value)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		columns = append(columns, cell.String())
	}
	return columns, nil
}

func decodeRows(raw json.RawMessage) ([][]Cell, error) {
	var values any
	if err := decodeJSON(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, nil
	}
	list, ok := values.([]any)
	if !ok {
		return nil, fmt.Errorf("rows must be a list, got %s", jsonTypeName(values))
	}
	rows := make([][]Cell, 0, len(list))
	for i, value := range list {
		rawRow, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("row %d must be a list, got %s", i, jsonTypeName(value))
		}
		row := make([]Cell, 0, len(rawRow))
		for j, rawCell := range rawRow {
			cell, err := cellFromJSON(rawCell)
			if err != nil {
				return nil, fmt.Errorf("row %d cell %d: %w", i, j, err)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
