package tables

import (
	"github.com/zikwall/dataframe-buffer/src/cx"
)

// ExampleRow is one random sample of the (i, j) grid
type ExampleRow struct {
	I    int64
	J    int64
	Data float64
}

func (t *ExampleRow) Row() cx.Vector {
	return cx.Vector{t.I, t.J, t.Data}
}

func ExampleColumns() []string {
	return []string{"i", "j", "data"}
}

// ExampleIndex identifies a sample by its grid position
func ExampleIndex() []string {
	return []string{"i", "j"}
}

// ExampleFrame holds a single row
func ExampleFrame(row *ExampleRow) *cx.Frame {
	return cx.NewFrame(ExampleColumns(), ExampleIndex()...).Append(row)
}
