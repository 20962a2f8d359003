package cx

import (
	"errors"
	"testing"
)

func TestFrameValidate(t *testing.T) {
	cases := []struct {
		name  string
		frame *Frame
		ok    bool
	}{
		{"well-formed frame", NewFrame([]string{"x", "y"}, "x").AppendVector(Vector{1, 2}), true},
		{"frame without index", NewFrame([]string{"x", "y"}).AppendVector(Vector{1, 2}), true},
		{"empty frame", NewFrame([]string{"x"}), true},
		{"no columns", NewFrame(nil), false},
		{"duplicate column", NewFrame([]string{"x", "x"}), false},
		{"index outside columns", NewFrame([]string{"x", "y"}, "z"), false},
		{"duplicate index column", NewFrame([]string{"x", "y"}, "x", "x"), false},
		{"short row", NewFrame([]string{"x", "y"}).AppendVector(Vector{1}), false},
		{"wide row", NewFrame([]string{"x", "y"}).AppendVector(Vector{1, 2, 3}), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.frame.Validate()
			if c.ok && err != nil {
				t.Fatalf("failed, expected valid frame, received %v", err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidFrame) {
				t.Fatalf("failed, expected ErrInvalidFrame, received %v", err)
			}
		})
	}
}

func TestFrameColumn(t *testing.T) {
	frame := NewFrame([]string{"x", "y"}).AppendVector(Vector{1, "a"}, Vector{2, "b"})
	values, ok := frame.Column("y")
	if !ok || len(values) != 2 || values[0] != "a" || values[1] != "b" {
		t.Fatalf("failed, unexpected column values %v", values)
	}
	if _, ok = frame.Column("z"); ok {
		t.Fatal("failed, expected missing column")
	}
}
