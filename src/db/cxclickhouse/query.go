package cxclickhouse

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

// seqColumn orders rows by append order, MergeTree tables have no implicit row order
const seqColumn = "_seq"

var columnTypes = map[cx.ColumnType]string{
	cx.TypeAny:       "Nullable(String)",
	cx.TypeInteger:   "Nullable(Int64)",
	cx.TypeReal:      "Nullable(Float64)",
	cx.TypeText:      "Nullable(String)",
	cx.TypeBlob:      "Nullable(String)",
	cx.TypeBoolean:   "Nullable(Bool)",
	cx.TypeTimestamp: "Nullable(DateTime64(9))",
}

func quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "\\`") + "`"
}

func quoteAll(identifiers []string) string {
	quoted := make([]string, len(identifiers))
	for i, identifier := range identifiers {
		quoted[i] = quote(identifier)
	}
	return strings.Join(quoted, ", ")
}

func createQuery(table cx.Table) string {
	columns := make([]string, 0, len(table.Columns)+1)
	columns = append(columns, seqColumn+" UInt64")
	for _, c := range table.Columns {
		columns = append(columns, quote(c.Name)+" "+columnTypes[c.Type])
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree ORDER BY %s",
		quote(table.Name), strings.Join(columns, ", "), seqColumn,
	)
}

// creates a template for preparing the query
func insertQuery(table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s)", quote(table), seqColumn, quoteAll(cols))
}

// parseExpr turns an index expression such as "(a, `b c`)" back into column names
func parseExpr(expr string) []string {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = expr[1 : len(expr)-1]
	}
	var columns []string
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "`") && strings.HasSuffix(part, "`") && len(part) >= 2 {
			part = strings.ReplaceAll(part[1:len(part)-1], "\\`", "`")
		}
		if part != "" {
			columns = append(columns, part)
		}
	}
	return columns
}

// normalize widens Go values to the types the Nullable(Int64)/Nullable(Float64)/Nullable(String)
// columns accept
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	default:
		return value
	}
}

// dereference unwraps the pointers Nullable columns are scanned into
func dereference(value interface{}) interface{} {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Ptr {
		return value
	}
	if v.IsNil() {
		return nil
	}
	return v.Elem().Interface()
}
