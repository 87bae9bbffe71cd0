package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const NoDataContext = "No Tableau data was provided for context. Answer the question generally."

const (
	dataStartMarker = "--- RAW DATA START ---"
	dataEndMarker   = "--- RAW DATA END ---"
)

type ContextKind string

const (
	ContextEmpty    ContextKind = "empty"
	ContextData     ContextKind = "data"
	ContextDegraded ContextKind = "degraded"
)

// RenderError reports a payload that could not be turned into a data
// context. Columns holds the raw column names when they were readable.
type RenderError struct {
	Stage   string
	Columns []string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Result is the outcome of BuildContext. Text is never empty.
type Result struct {
	Text    string
	Kind    ContextKind
	Rows    int
	Columns int
	Padded  int
	Dropped int
	Err     error
}

// BuildContext never fails: absent payloads give NoDataContext and payloads
// that cannot be rendered give a degraded context naming the failure.
func BuildContext(raw json.RawMessage) Result {
	payload, err := Decode(raw)
	if err != nil {
		return degraded(err)
	}
	if payload == nil {
		return Result{Text: NoDataContext, Kind: ContextEmpty}
	}

	text, frame, err := render(*payload)
	if err != nil {
		return degraded(err)
	}
	return Result{
		Text:    text,
		Kind:    ContextData,
		Rows:    frame.RowCount(),
		Columns: frame.ColumnCount(),
		Padded:  frame.Padded,
		Dropped: frame.Dropped,
	}
}

// Render materializes, coerces and serializes the payload into the data context.
func Render(p Payload) (string, error) {
	text, _, err := render(p)
	return text, err
}

func render(p Payload) (string, Frame, error) {
	frame := Coerce(Materialize(p))

	var data bytes.Buffer
	if err := WriteCSV(&data, frame); err != nil {
		return "", Frame{}, &RenderError{Stage: "serialize", Columns: p.Columns, Err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The user is viewing a Tableau worksheet named '%s'.\n", frame.SheetName)
	fmt.Fprintf(&b, "It contains %d rows and %d columns.\n", frame.RowCount(), frame.ColumnCount())
	fmt.Fprintf(&b, "Column names: %s.\n", formatColumns(frame.Columns))
	b.WriteString("The **full raw data** extracted from the current worksheet is provided below in CSV format. ")
	b.WriteString("Use this data to perform detailed analysis, comparisons, and calculations to answer the user's question.\n")
	b.WriteString("Ensure your analysis is precise and based strictly on the provided data.\n\n")
	b.WriteString(dataStartMarker + "\n")
	b.WriteString(data.String())
	b.WriteString(dataEndMarker + "\n")
	return b.String(), frame, nil
}

func degraded(err error) Result {
	var columns []string
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		columns = renderErr.Columns
	}
	text := fmt.Sprintf("Tableau data was provided but could not be processed into CSV: %v. ", err)
	if len(columns) > 0 {
		text += fmt.Sprintf("Answer the question generally based on the column names: %s.", formatColumns(columns))
	} else {
		text += "Answer the question generally."
	}
	return Result{Text: text, Kind: ContextDegraded, Columns: len(columns), Err: err}
}

func formatColumns(columns []string) string {
	if columns == nil {
		columns = []string{}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(columns); err != nil {
		return strings.Join(columns, ", ")
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
