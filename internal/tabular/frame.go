package tabular

// Frame is a payload aligned to its column list. Short rows are padded with
// null cells and cells past the last column are dropped.
type Frame struct {
	SheetName string
	Columns   []string
	Rows      [][]Cell
	Numeric   []bool
	Padded    int
	Dropped   int
}

func Materialize(p Payload) Frame {
	frame := Frame{
		SheetName: p.SheetName,
		Columns:   append([]string(nil), p.Columns...),
		Rows:      make([][]Cell, 0, len(p.Rows)),
		Numeric:   make([]bool, len(p.Columns)),
	}
	width := len(p.Columns)
	for _, source := range p.Rows {
		row := make([]Cell, width)
		copied := copy(row, source)
		for i := copied; i < width; i++ {
			row[i] = NullCell()
		}
		frame.Padded += width - copied
		frame.Dropped += len(source) - copied
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}

func (f Frame) RowCount() int {
	return len(f.Rows)
}

func (f Frame) ColumnCount() int {
	return len(f.Columns)
}

func (f Frame) Column(index int) []Cell {
	values := make([]Cell, 0, len(f.Rows))
	for _, row := range f.Rows {
		values = append(values, row[index])
	}
	return values
}

// CoerceColumn converts a column to numbers when every non-null value is
// numeric. Otherwise it returns the column unchanged and false.
func CoerceColumn(values []Cell) ([]Cell, bool) {
	coerced := make([]Cell, len(values))
	for i, value := range values {
		switch value.Kind {
		case KindNull:
			coerced[i] = value
		case KindNumber, KindText:
			number, canonical, ok := ParseNumber(value.Text)
			if !ok {
				return values, false
			}
			coerced[i] = NumberCell(number, canonical)
		default:
			return values, false
		}
	}
	return coerced, true
}

// Coerce applies CoerceColumn to every column and returns a new frame.
func Coerce(f Frame) Frame {
	out := f
	out.Rows = make([][]Cell, len(f.Rows))
	for i, row := range f.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	out.Numeric = make([]bool, len(f.Columns))
	for col := range f.Columns {
		values, numeric := CoerceColumn(f.Column(col))
		out.Numeric[col] = numeric
		if !numeric {
			continue
		}
		for i := range out.Rows {
			out.Rows[i][col] = values[i]
		}
	}
	return out
}
