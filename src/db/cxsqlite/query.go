package cxsqlite

import (
	"fmt"
	"strings"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

// declared types drive go-sqlite3's conversions on read: BOOLEAN comes back as bool,
// TIMESTAMP as time.Time
var declaredTypes = map[cx.ColumnType]string{
	cx.TypeAny:       "",
	cx.TypeInteger:   "INTEGER",
	cx.TypeReal:      "REAL",
	cx.TypeText:      "TEXT",
	cx.TypeBlob:      "BLOB",
	cx.TypeBoolean:   "BOOLEAN",
	cx.TypeTimestamp: "TIMESTAMP",
}

// identifiers come from user column names such as "Time (s)", always quote them
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func quoteAll(identifiers []string) string {
	quoted := make([]string, len(identifiers))
	for i, identifier := range identifiers {
		quoted[i] = quote(identifier)
	}
	return strings.Join(quoted, ", ")
}

func createQuery(table cx.Table) string {
	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = strings.TrimSpace(quote(c.Name) + " " + declaredTypes[c.Type])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table.Name), strings.Join(columns, ", "))
}

// creates a template for preparing the query
func insertQuery(table string, cols []string) string {
	placeholders := make([]string, 0, len(cols))
	for range cols {
		placeholders = append(placeholders, "?")
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quote(table),
		quoteAll(cols),
		strings.Join(placeholders, ", "),
	)
}
