package cx

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSchema(t *testing.T) {
	first := NewFrame([]string{"x", "y", "when"}, "x").
		AppendVector(Vector{int64(1), nil, time.Now()}, Vector{int64(2), 0.5, time.Now()})
	schema := NewSchema(first)

	t.Run("it should infer types from first non-nil values", func(t *testing.T) {
		want := []Column{{"x", TypeInteger}, {"y", TypeReal}, {"when", TypeTimestamp}}
		if !reflect.DeepEqual(schema.Columns(), want) {
			t.Fatalf("failed, expected %v, received %v", want, schema.Columns())
		}
		if !schema.HasIndex() || !reflect.DeepEqual(schema.IndexColumns(), []Column{{"x", TypeInteger}}) {
			t.Fatalf("failed, unexpected index columns %v", schema.IndexColumns())
		}
	})

	t.Run("it should tolerate column order differences", func(t *testing.T) {
		frame := NewFrame([]string{"when", "y", "x"}, "x").AppendVector(Vector{time.Now(), 1.5, int64(3)})
		if err := schema.Check(frame); err != nil {
			t.Fatal(err)
		}
		rows := schema.Project(frame)
		if rows[0][0] != int64(3) || rows[0][1] != 1.5 {
			t.Fatalf("failed, expected rows in schema order, received %v", rows[0])
		}
		index := schema.ProjectIndex(frame)
		if len(index[0]) != 1 || index[0][0] != int64(3) {
			t.Fatalf("failed, unexpected index projection %v", index[0])
		}
	})

	mismatches := map[string]*Frame{
		"added column":      NewFrame([]string{"x", "y", "when", "z"}, "x"),
		"removed column":    NewFrame([]string{"x", "y"}, "x"),
		"renamed column":    NewFrame([]string{"x", "y", "at"}, "x"),
		"different index":   NewFrame([]string{"x", "y", "when"}, "y"),
		"wider index":       NewFrame([]string{"x", "y", "when"}, "x", "y"),
		"index dropped":     NewFrame([]string{"x", "y", "when"}),
		"other wider index": NewFrame([]string{"x", "y", "when"}, "x", "when"),
	}
	for name, frame := range mismatches {
		t.Run("it should reject "+name, func(t *testing.T) {
			if err := schema.Check(frame); !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("failed, expected ErrSchemaMismatch, received %v", err)
			}
		})
	}

	t.Run("it should keep columns holding only nils untyped", func(t *testing.T) {
		s := NewSchema(NewFrame([]string{"a"}).AppendVector(Vector{nil}))
		if s.Columns()[0].Type != TypeAny {
			t.Fatalf("failed, expected TypeAny, received %s", s.Columns()[0].Type)
		}
	})
}
