package load

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

// WriteCSV writes a header with the column names, then one record per row.
// NULL values become empty fields.
func WriteCSV(w io.Writer, frame *cx.Frame) error {
	out := csv.NewWriter(w)
	if err := out.Write(frame.Columns()); err != nil {
		return err
	}
	record := make([]string, len(frame.Columns()))
	for _, row := range frame.Rows() {
		for i, value := range row {
			record[i] = field(value)
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func field(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

type document struct {
	Columns []string    `json:"columns"`
	Index   []string    `json:"index"`
	Rows    []cx.Vector `json:"rows"`
}

// WriteJSON writes the frame as one document holding its columns, its index and its rows
func WriteJSON(w io.Writer, frame *cx.Frame) error {
	doc := document{
		Columns: frame.Columns(),
		Index:   frame.Index(),
		Rows:    frame.Rows(),
	}
	if doc.Index == nil {
		doc.Index = []string{}
	}
	if doc.Rows == nil {
		doc.Rows = []cx.Vector{}
	}
	return json.NewEncoder(w).Encode(doc)
}
