package cxmem

import (
	"testing"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

func TestMemoryBuffer(t *testing.T) {
	t.Run("it should keep frames in write order until flush", func(t *testing.T) {
		buf := NewBuffer(2)
		for i := 0; i < 3; i++ {
			frame := cx.NewFrame([]string{"i"}).AppendVector(cx.Vector{i})
			if err := buf.Write(frame); err != nil {
				t.Fatal(err)
			}
		}
		if buf.Len() != 3 {
			t.Fatalf("failed, expected three frames, received %d", buf.Len())
		}
		frames, err := buf.Read()
		if err != nil {
			t.Fatal(err)
		}
		for i, frame := range frames {
			if frame.Rows()[0][0] != i {
				t.Fatalf("failed, frame %d out of order: %v", i, frame.Rows())
			}
		}
		if err = buf.Flush(); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 0 {
			t.Fatal("failed, the buffer was expected to be cleared")
		}
		if len(frames) != 3 {
			t.Fatal("failed, a snapshot must survive a flush")
		}
	})
}

func TestMemoryBufferSizeHint(t *testing.T) {
	t.Run("it should accept an unbounded size hint", func(t *testing.T) {
		buf := NewBuffer(^uint(0))
		if err := buf.Write(cx.NewFrame([]string{"i"})); err != nil {
			t.Fatal(err)
		}
		if got := cap(buf.(*memory).buffer); got > maxPrealloc+1 {
			t.Fatalf("failed, expected at most %d preallocated frames, received %d", maxPrealloc+1, got)
		}
	})
}
