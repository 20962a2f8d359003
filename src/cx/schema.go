package cx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ColumnType is the storage affinity of a column, inferred from Go values
type ColumnType int

const (
	TypeAny ColumnType = iota
	TypeInteger
	TypeReal
	TypeText
	TypeBlob
	TypeBoolean
	TypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeText:
		return "text"
	case TypeBlob:
		return "blob"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "any"
	}
}

// TypeOf returns the ColumnType a single value would be stored with
func TypeOf(value interface{}) ColumnType {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeReal
	case string:
		return TypeText
	case []byte:
		return TypeBlob
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeTimestamp
	default:
		return TypeAny
	}
}

// Schema is the column contract locked by the first appended frame.
// It is immutable: every accessor returns a copy.
type Schema struct {
	columns []Column
	index   []string
}

// NewSchema captures the columns, index columns and column types of the frame.
// A column's type comes from its first non-nil value, columns holding only nils are TypeAny.
func NewSchema(frame *Frame) Schema {
	columns := make([]Column, len(frame.columns))
	for i, name := range frame.columns {
		columns[i] = Column{Name: name, Type: TypeAny}
		for _, row := range frame.rows {
			if row[i] != nil {
				columns[i].Type = TypeOf(row[i])
				break
			}
		}
	}
	return Schema{
		columns: columns,
		index:   append([]string(nil), frame.index...),
	}
}

func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

func (s Schema) Index() []string {
	return append([]string(nil), s.index...)
}

func (s Schema) HasIndex() bool {
	return len(s.index) > 0
}

// IndexColumns returns the typed definitions of the index columns, in index order
func (s Schema) IndexColumns() []Column {
	out := make([]Column, 0, len(s.index))
	for _, name := range s.index {
		for _, c := range s.columns {
			if c.Name == name {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Check compares the frame's column set and index column set against the schema.
// Order and value types are not compared.
func (s Schema) Check(frame *Frame) error {
	if !sameSet(s.ColumnNames(), frame.columns) {
		return fmt.Errorf("%w: columns %s, expected %s",
			ErrSchemaMismatch, setString(frame.columns), setString(s.ColumnNames()))
	}
	if !sameSet(s.index, frame.index) {
		return fmt.Errorf("%w: index columns %s, expected %s",
			ErrSchemaMismatch, setString(frame.index), setString(s.index))
	}
	return nil
}

// Project returns the frame's rows with values reordered to the schema column order.
// The frame must have passed Check.
func (s Schema) Project(frame *Frame) []Vector {
	return frame.project(s.ColumnNames())
}

// ProjectIndex returns the index column values of every row of the frame, in index order
func (s Schema) ProjectIndex(frame *Frame) []Vector {
	return frame.project(s.index)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func setString(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return "{" + strings.Join(sorted, ", ") + "}"
}
