package cxclickhouse

import (
	"reflect"
	"testing"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

func TestQueries(t *testing.T) {
	t.Run("it should order tables by the hidden sequence column", func(t *testing.T) {
		got := createQuery(cx.Table{Name: "dataframe", Columns: []cx.Column{
			{Name: "n", Type: cx.TypeInteger},
			{Name: "Time (s)", Type: cx.TypeReal},
		}})
		want := "CREATE TABLE IF NOT EXISTS `dataframe` (_seq UInt64, `n` Nullable(Int64), `Time (s)` Nullable(Float64)) " +
			"ENGINE = MergeTree ORDER BY _seq"
		if got != want {
			t.Fatalf("failed, expected %s, received %s", want, got)
		}
	})
	t.Run("it should prepend the sequence column on insert", func(t *testing.T) {
		if got := insertQuery("dataframe", []string{"x"}); got != "INSERT INTO `dataframe` (_seq, `x`)" {
			t.Fatalf("failed, unexpected insert query %s", got)
		}
	})
	t.Run("it should parse index expressions", func(t *testing.T) {
		cases := map[string][]string{
			"x":                {"x"},
			"x, y":             {"x", "y"},
			"(x, `Time (s)`)":  {"x", "Time (s)"},
			"`n_event`, `a\\`b`": {"n_event", "a`b"},
		}
		for expr, want := range cases {
			if got := parseExpr(expr); !reflect.DeepEqual(got, want) {
				t.Fatalf("failed, %q: expected %v, received %v", expr, want, got)
			}
		}
	})
	t.Run("it should widen values", func(t *testing.T) {
		if normalize(int32(3)) != int64(3) || normalize(float32(0.5)) != float64(0.5) || normalize([]byte("a")) != "a" {
			t.Fatal("failed, unexpected normalization")
		}
		if normalize(nil) != nil {
			t.Fatal("failed, nil must stay nil")
		}
	})
	t.Run("it should unwrap nullable values", func(t *testing.T) {
		value := int64(7)
		var missing *float64
		if dereference(&value) != int64(7) || dereference(missing) != nil || dereference("a") != "a" {
			t.Fatal("failed, unexpected dereference")
		}
	})
}
