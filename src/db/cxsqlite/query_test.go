package cxsqlite

import (
	"testing"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

func TestQueries(t *testing.T) {
	t.Run("it should quote identifiers with spaces and quotes", func(t *testing.T) {
		if got := quote(`Temperature "C"`); got != `"Temperature ""C"""` {
			t.Fatalf("failed, unexpected quoting %s", got)
		}
	})
	t.Run("it should build create query with declared types", func(t *testing.T) {
		got := createQuery(cx.Table{Name: "dataframe", Columns: []cx.Column{
			{Name: "n", Type: cx.TypeInteger},
			{Name: "Time (s)", Type: cx.TypeReal},
			{Name: "anything", Type: cx.TypeAny},
		}})
		want := `CREATE TABLE IF NOT EXISTS "dataframe" ("n" INTEGER, "Time (s)" REAL, "anything")`
		if got != want {
			t.Fatalf("failed, expected %s, received %s", want, got)
		}
	})
	t.Run("it should build insert query", func(t *testing.T) {
		got := insertQuery("dataframe", []string{"x", "y"})
		want := `INSERT INTO "dataframe" ("x", "y") VALUES (?, ?)`
		if got != want {
			t.Fatalf("failed, expected %s, received %s", want, got)
		}
	})
}
