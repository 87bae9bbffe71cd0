package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is a single worksheet value. For numbers Text holds the literal the
// value was received as, so uncoerced numbers serialize unchanged.
type Cell struct {
	Kind Kind
	Bool bool
	Num  float64
	Text string
}

func NullCell() Cell {
	return Cell{Kind: KindNull}
}

func BoolCell(value bool) Cell {
	return Cell{Kind: KindBool, Bool: value}
}

func TextCell(value string) Cell {
	return Cell{Kind: KindText, Text: value}
}

func NumberCell(value float64, literal string) Cell {
	return Cell{Kind: KindNumber, Num: value, Text: literal}
}

func (c Cell) IsNull() bool {
	return c.Kind == KindNull
}

// String renders the cell the way it is written into the CSV block.
func (c Cell) String() string {
	switch c.Kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return c.Text
	}
}

var numericLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var integerLiteral = regexp.MustCompile(`^[+-]?\d+$`)

// ParseNumber reports whether raw is a plain finite decimal literal and
// returns its value with a canonical text form.
func ParseNumber(raw string) (float64, string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !numericLiteral.MatchString(trimmed) {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, "", false
	}
	if integerLiteral.MatchString(trimmed) {
		return value, canonicalInteger(trimmed), true
	}
	return value, FormatNumber(value), true
}

// FormatNumber writes integral values without a fractional part and
// everything else in shortest decimal form.
func FormatNumber(value float64) string {
	if value == 0 {
		return "0"
	}
	abs := math.Abs(value)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func canonicalInteger(literal string) string {
	negative := strings.HasPrefix(literal, "-")
	digits := strings.TrimLeft(strings.TrimLeft(literal, "+-"), "0")
	if digits == "" {
		return "0"
	}
	if negative {
		return "-" + digits
	}
	return digits
}

// cellFromJSON maps a decoded JSON value (decoded with UseNumber) onto a Cell.
func cellFromJSON(value any) (Cell, error) {
	switch v := value.(type) {
	case nil:
		return NullCell(), nil
	case bool:
		return BoolCell(v), nil
	case string:
		return TextCell(v), nil
	case json.Number:
		literal := v.String()
		parsed, err := strconv.ParseFloat(literal, 64)
		if err != nil || math.IsInf(parsed, 0) {
			return TextCell(literal), nil
		}
		return NumberCell(parsed, literal), nil
	case []any, map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Cell{}, fmt.Errorf("encode nested value: %w", err)
		}
		return TextCell(string(encoded)), nil
	default:
		return Cell{}, fmt.Errorf("unsupported cell value of type %T", value)
	}
}

func decodeJSON(raw []byte, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(dst)
}
